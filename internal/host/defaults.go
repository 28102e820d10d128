package host

import (
	"fmt"
	"html"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/primer/internal/head"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/request"
)

// Callback identities of the host defaults.  Toggles remove them by these
// names, so they must not change.
const (
	Generator              = "wp_generator"
	FeedLinks              = "feed_links"
	FeedLinksExtra         = "feed_links_extra"
	RSDLink                = "rsd_link"
	WLWManifestLink        = "wlwmanifest_link"
	ShortlinkHead          = "wp_shortlink_wp_head"
	ShortlinkHeader        = "wp_shortlink_header"
	RestOutputLink         = "rest_output_link_wp_head"
	OEmbedDiscoveryLinks   = "wp_oembed_add_discovery_links"
	OEmbedHostJS           = "wp_oembed_add_host_js"
	OEmbedRegisterRoute    = "wp_oembed_register_route"
	OEmbedFilterResult     = "wp_filter_oembed_result"
	EmojiDetectionScript   = "print_emoji_detection_script"
	EmojiStyles            = "print_emoji_styles"
	StaticizeEmoji         = "wp_staticize_emoji"
	StaticizeEmojiForEmail = "wp_staticize_emoji_for_email"
	Fonts                  = "primer_fonts"
)

// Priorities that differ from hook.DefaultPriority.
const (
	FeedLinksPriority      = 2
	FeedLinksExtraPriority = 3
	EmojiScriptPriority    = 7
	ShortlinkHeaderPrio    = 11
)

// OpenSansContext is the translation context the font toggle keys on.
const OpenSansContext = "Open Sans font: on or off"

// Mail is the payload of the wp_mail filter.
type Mail struct {
	To      []string
	Subject string
	Body    string
}

// RegisterDefaults attaches the host's default callbacks.  wp_head
// callbacks receive (*head.Builder, *request.Context); style and script
// printers receive *head.Builder.
func RegisterDefaults(r *hook.Registry, site *Site) error {
	type reg struct {
		point string
		kind  hook.Kind
		id    string
		cb    any
		opts  []hook.RegisterOption
	}
	headArgs := hook.WithArity(2)
	owner := hook.WithOwner("host")

	regs := []reg{
		{hook.Head, hook.Action, Generator, hook.Action1(func(b *head.Builder) error {
			b.Meta(fmt.Sprintf(`<meta name="generator" content="%s">`, html.EscapeString(site.Name+" "+site.Version)))
			return nil
		}), nil},
		{hook.Head, hook.Action, FeedLinks, hook.Action1(func(b *head.Builder) error {
			if site.ServesFeed("rss2") {
				b.Link(fmt.Sprintf(`<link rel="alternate" type="application/rss+xml" title="%s Feed" href="%s/feed/">`,
					html.EscapeString(site.Name), site.Home))
			}
			return nil
		}), []hook.RegisterOption{hook.WithPriority(FeedLinksPriority)}},
		{hook.Head, hook.Action, FeedLinksExtra, hook.Action2(func(b *head.Builder, c *request.Context) error {
			if c != nil && c.Type == request.Category && site.ServesFeed("rss2") {
				b.Link(fmt.Sprintf(`<link rel="alternate" type="application/rss+xml" href="%s/category/%s/feed/">`,
					site.Home, html.EscapeString(c.Slug)))
			}
			return nil
		}), []hook.RegisterOption{hook.WithPriority(FeedLinksExtraPriority), headArgs}},
		{hook.Head, hook.Action, RSDLink, hook.Action1(func(b *head.Builder) error {
			b.Link(fmt.Sprintf(`<link rel="EditURI" type="application/rsd+xml" title="RSD" href="%s/xmlrpc.php?rsd">`, site.Home))
			return nil
		}), nil},
		{hook.Head, hook.Action, WLWManifestLink, hook.Action1(func(b *head.Builder) error {
			b.Link(fmt.Sprintf(`<link rel="wlwmanifest" type="application/wlwmanifest+xml" href="%s/wp-includes/wlwmanifest.xml">`, site.Home))
			return nil
		}), nil},
		{hook.Head, hook.Action, ShortlinkHead, hook.Action2(func(b *head.Builder, c *request.Context) error {
			if c != nil && c.Type == request.Single && c.ObjectID > 0 {
				b.Link(fmt.Sprintf(`<link rel="shortlink" href="%s">`, shortlink(site, c.ObjectID)))
			}
			return nil
		}), []hook.RegisterOption{headArgs}},
		{hook.Head, hook.Action, RestOutputLink, hook.Action1(func(b *head.Builder) error {
			b.Link(fmt.Sprintf(`<link rel="https://api.w.org/" href="%s/wp-json/">`, site.Home))
			return nil
		}), nil},
		{hook.Head, hook.Action, OEmbedDiscoveryLinks, hook.Action2(func(b *head.Builder, c *request.Context) error {
			if c != nil && c.Type == request.Single && c.URL != nil {
				b.Link(fmt.Sprintf(`<link rel="alternate" type="application/json+oembed" href="%s/wp-json/oembed/1.0/embed?url=%s">`,
					site.Home, html.EscapeString(c.URL.String())))
			}
			return nil
		}), []hook.RegisterOption{headArgs}},
		{hook.Head, hook.Action, OEmbedHostJS, hook.Action1(func(b *head.Builder) error {
			b.Script(fmt.Sprintf(`<script src="%s/wp-includes/js/wp-embed.min.js" defer></script>`, site.Home))
			return nil
		}), nil},
		{hook.Head, hook.Action, EmojiDetectionScript, hook.Action1(printEmojiScript(site)),
			[]hook.RegisterOption{hook.WithPriority(EmojiScriptPriority)}},
		{hook.Head, hook.Action, Fonts, hook.Action1(func(b *head.Builder) error {
			if TranslateWithContext(r, "on", OpenSansContext, "default") != "off" {
				b.Link(`<link rel="stylesheet" id="open-sans-css" href="https://fonts.googleapis.com/css?family=Open+Sans:400,700">`)
			}
			return nil
		}), nil},

		{hook.AdminPrintScripts, hook.Action, EmojiDetectionScript, hook.Action1(printEmojiScript(site)), nil},
		{hook.AdminPrintStyles, hook.Action, EmojiStyles, hook.Action1(printEmojiStyles), nil},
		{hook.PrintStyles, hook.Action, EmojiStyles, hook.Action1(printEmojiStyles), nil},

		{hook.TemplateRedirect, hook.Action, ShortlinkHeader, hook.Action1(func(c *request.Context) error {
			if c != nil && c.Type == request.Single && c.ObjectID > 0 {
				c.AddHeader("Link", "<"+shortlink(site, c.ObjectID)+">; rel=shortlink")
			}
			return nil
		}), []hook.RegisterOption{hook.WithPriority(ShortlinkHeaderPrio)}},

		{hook.RestAPIInit, hook.Action, OEmbedRegisterRoute, hook.Action1(func(api chi.Router) error {
			api.Get("/oembed/1.0/embed", oembedHandler(site))
			return nil
		}), nil},

		{hook.ContentFeed, hook.Filter, StaticizeEmoji, hook.FilterFunc(StaticizeEmojiText), nil},
		{hook.CommentTextRSS, hook.Filter, StaticizeEmoji, hook.FilterFunc(StaticizeEmojiText), nil},
		{hook.Mail, hook.Filter, StaticizeEmojiForEmail, hook.FilterFunc(func(m Mail) Mail {
			m.Body = StaticizeEmojiText(m.Body)
			return m
		}), nil},
		{hook.OEmbedDataparse, hook.Filter, OEmbedFilterResult, hook.FilterFunc(FilterOEmbedResult), nil},
	}

	for _, x := range regs {
		opts := append([]hook.RegisterOption{owner}, x.opts...)
		if _, err := r.Register(x.point, x.kind, x.id, x.cb, opts...); err != nil {
			return fmt.Errorf("host default %s on %s: %w", x.id, x.point, err)
		}
	}
	return nil
}

func shortlink(site *Site, id int64) string {
	return site.Home + "/?p=" + strconv.FormatInt(id, 10)
}

func printEmojiScript(site *Site) func(*head.Builder) error {
	return func(b *head.Builder) error {
		b.Script(fmt.Sprintf(`<script>window._wpemojiSettings={"baseUrl":%q,"ext":".png"};</script>`,
			site.Home+"/wp-includes/images/emoji/72x72/"))
		return nil
	}
}

func printEmojiStyles(b *head.Builder) error {
	b.InlineStyle("wp-emoji-styles", "img.emoji{display:inline!important;border:none!important;"+
		"height:1em!important;width:1em!important;margin:0 .07em!important;vertical-align:-0.1em!important}")
	return nil
}

var scriptTag = regexp.MustCompile(`(?is)<script\b.*?</script>|<iframe\b[^>]*\bsrcdoc=[^>]*>`)

// FilterOEmbedResult strips scripts from third-party oEmbed markup.
func FilterOEmbedResult(markup string) string {
	return scriptTag.ReplaceAllString(markup, "")
}
