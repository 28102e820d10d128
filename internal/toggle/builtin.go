package toggle

import (
	"net/http"
	"strings"

	"github.com/yanizio/primer/internal/content"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/host"
	"github.com/yanizio/primer/internal/request"
)

// Toggle names, as used in configuration.
const (
	NameDisableEmoji      = "disable-emoji"
	NameDisableArchives   = "disable-archives"
	NameDisableFeeds      = "disable-feeds"
	NameRemoveHeadClutter = "remove-head-clutter"
	NameDisableOpenSans   = "disable-open-sans"
	NameSearchTitlesOnly  = "search-titles-only"
	NameDisableREST       = "disable-rest"
	NameDisableEmbeds     = "disable-embeds"
)

// Callback identities added by the built-in toggles.
const (
	RemoveArchivesID   = "primer_remove_archives"
	RemoveFeedsID      = "primer_remove_feeds"
	KillFeedEndpointID = "primer_kill_feed_endpoint"
	DisableOpenSansID  = "primer_disable_open_sans"
	SearchByTitleID    = "primer_search_by_title"
	ReturnFalseID      = "__return_false"
	DisableEmbedsID    = "primer_disable_embeds_init"
	EmbedPluginID      = "primer_disable_embeds_editor_plugin"
	EmbedRewritesID    = "primer_disable_embeds_rewrites"
)

const (
	feedRedirectPriority  = 1
	killFeedPriority      = 99
	openSansPriority      = 888
	disableEmbedsPriority = 9999
)

// Defaults returns every built-in toggle.  home is the redirect target for
// disabled feeds.
func Defaults(home string) []Toggle {
	return []Toggle{
		DisableEmoji(),
		DisableArchives(),
		DisableFeeds(home),
		RemoveHeadClutter(),
		DisableOpenSans(),
		SearchTitlesOnly(),
		DisableREST(),
		DisableEmbeds(),
	}
}

// DisableEmoji removes the emoji detection script, its styles, and the
// staticize filters for feeds and mail.
func DisableEmoji() Toggle {
	return Remove(NameDisableEmoji,
		Target{hook.AdminPrintScripts, host.EmojiDetectionScript, hook.DefaultPriority},
		Target{hook.AdminPrintStyles, host.EmojiStyles, hook.DefaultPriority},
		Target{hook.Head, host.EmojiDetectionScript, host.EmojiScriptPriority},
		Target{hook.PrintStyles, host.EmojiStyles, hook.DefaultPriority},
		Target{hook.ContentFeed, host.StaticizeEmoji, hook.DefaultPriority},
		Target{hook.CommentTextRSS, host.StaticizeEmoji, hook.DefaultPriority},
		Target{hook.Mail, host.StaticizeEmojiForEmail, hook.DefaultPriority},
	)
}

// DisableArchives turns category, tag, date, and author archives into
// not-found pages.
func DisableArchives() Toggle {
	return Toggle{Name: NameDisableArchives, Apply: func(r *hook.Registry) error {
		_, err := r.AddAction(hook.TemplateRedirect, RemoveArchivesID,
			hook.Action1(func(c *request.Context) error {
				if c != nil && c.Type.IsArchive() {
					c.SetNotFound()
				}
				return nil
			}), hook.WithOwner(Owner))
		return err
	}}
}

// DisableFeeds removes feed links from the head, redirects every feed
// request home, and empties the feed endpoint list on init.
func DisableFeeds(home string) Toggle {
	return Toggle{Name: NameDisableFeeds, Apply: func(r *hook.Registry) error {
		removeAll(r, []Target{
			{hook.Head, host.FeedLinks, host.FeedLinksPriority},
			{hook.Head, host.FeedLinksExtra, host.FeedLinksExtraPriority},
		})

		redirect := hook.Action1(func(c *request.Context) error {
			if c != nil {
				c.Redirect(home+"/", http.StatusFound)
			}
			return nil
		})
		for _, feed := range host.DefaultFeeds {
			if _, err := r.AddAction(hook.DoFeed(feed), RemoveFeedsID, redirect,
				hook.WithPriority(feedRedirectPriority), hook.WithOwner(Owner)); err != nil {
				return err
			}
		}

		_, err := r.AddAction(hook.Init, KillFeedEndpointID, hook.Action1(func(s *host.Site) error {
			if s != nil {
				s.Feeds = nil
			}
			return nil
		}), hook.WithPriority(killFeedPriority), hook.WithOwner(Owner))
		return err
	}}
}

// RemoveHeadClutter drops the generator tag, the RSD and WLW manifest
// links, and both shortlink outputs.
func RemoveHeadClutter() Toggle {
	return Remove(NameRemoveHeadClutter,
		Target{hook.Head, host.Generator, hook.DefaultPriority},
		Target{hook.Head, host.RSDLink, hook.DefaultPriority},
		Target{hook.Head, host.WLWManifestLink, hook.DefaultPriority},
		Target{hook.Head, host.ShortlinkHead, hook.DefaultPriority},
		Target{hook.TemplateRedirect, host.ShortlinkHeader, host.ShortlinkHeaderPrio},
	)
}

// DisableOpenSans answers "off" to the Open Sans on/off translation.
func DisableOpenSans() Toggle {
	return Toggle{Name: NameDisableOpenSans, Apply: func(r *hook.Registry) error {
		_, err := r.AddFilter(hook.GettextWithContext, DisableOpenSansID,
			func(value any, args ...any) (any, error) {
				if len(args) >= 2 && args[1] == host.OpenSansContext && args[0] == "on" {
					return "off", nil
				}
				return value, nil
			},
			hook.WithPriority(openSansPriority), hook.WithArity(4), hook.WithOwner(Owner))
		return err
	}}
}

// SearchTitlesOnly narrows search to post titles.  Anonymous visitors only
// match posts without a password.
func SearchTitlesOnly() Toggle {
	return Toggle{Name: NameSearchTitlesOnly, Apply: func(r *hook.Registry) error {
		_, err := r.AddFilter(hook.PostsSearch, SearchByTitleID,
			hook.Filter2(searchByTitle), hook.WithArity(2), hook.WithOwner(Owner))
		return err
	}}
}

func searchByTitle(clause content.SearchClause, q content.SearchQuery) content.SearchClause {
	if clause.Empty() || len(q.Terms) == 0 {
		return clause
	}
	var (
		parts []string
		args  []any
	)
	for _, term := range q.Terms {
		parts = append(parts, "p.post_title LIKE ?")
		args = append(args, content.LikePattern(term, q.Exact))
	}
	if !q.LoggedIn {
		parts = append(parts, "p.post_password = ''")
	}
	return content.SearchClause{SQL: " AND " + strings.Join(parts, " AND "), Args: args}
}

// DisableREST switches the REST API and JSONP off and removes the REST
// and oEmbed discovery links.
func DisableREST() Toggle {
	return Toggle{Name: NameDisableREST, Apply: func(r *hook.Registry) error {
		for _, p := range []string{hook.RestEnabled, hook.RestJSONPEnabled} {
			if _, err := r.AddFilter(p, ReturnFalseID, hook.Return(false), hook.WithOwner(Owner)); err != nil {
				return err
			}
		}
		removeAll(r, []Target{
			{hook.Head, host.RestOutputLink, hook.DefaultPriority},
			{hook.Head, host.OEmbedDiscoveryLinks, hook.DefaultPriority},
		})
		return nil
	}}
}

// DisableEmbeds removes every piece of the embed feature on init: the
// query var, the oEmbed route and result filter, discovery and host JS,
// the editor plugin, and the embed rewrite rules.
func DisableEmbeds() Toggle {
	return Toggle{Name: NameDisableEmbeds, Apply: func(r *hook.Registry) error {
		_, err := r.AddAction(hook.Init, DisableEmbedsID, hook.Action1(func(s *host.Site) error {
			if s != nil {
				s.QueryVars = without(s.QueryVars, "embed")
			}
			removeAll(r, []Target{
				{hook.RestAPIInit, host.OEmbedRegisterRoute, hook.DefaultPriority},
				{hook.OEmbedDataparse, host.OEmbedFilterResult, hook.DefaultPriority},
				{hook.Head, host.OEmbedDiscoveryLinks, hook.DefaultPriority},
				{hook.Head, host.OEmbedHostJS, hook.DefaultPriority},
			})
			if _, err := r.AddFilter(hook.EmbedDiscover, ReturnFalseID, hook.Return(false), hook.WithOwner(Owner)); err != nil {
				return err
			}
			if _, err := r.AddFilter(hook.EditorPlugins, EmbedPluginID, hook.FilterFunc(func(p []string) []string {
				return without(p, "wpembed")
			}), hook.WithOwner(Owner)); err != nil {
				return err
			}
			_, err := r.AddFilter(hook.RewriteRules, EmbedRewritesID, hook.FilterFunc(dropEmbedRules), hook.WithOwner(Owner))
			return err
		}), hook.WithPriority(disableEmbedsPriority), hook.WithOwner(Owner))
		return err
	}}
}

func dropEmbedRules(rules map[string]string) map[string]string {
	out := make(map[string]string, len(rules))
	for pattern, rewrite := range rules {
		if !strings.Contains(rewrite, "embed=true") {
			out[pattern] = rewrite
		}
	}
	return out
}

func without(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
