package server

import (
	"encoding/xml"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/routing"
)

const feedItems = 10

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Generator     string    `xml:"generator,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// feed writes the newest posts as RSS 2.0.  Every served feed type gets
// the same document; item bodies pass through the_content_feed.
func (s *Server) feed(w http.ResponseWriter, r *http.Request, req *request.Context) {
	e := s.engine
	posts, err := e.Content.Recent(r.Context(), feedItems)
	if err != nil {
		s.log.Error("feed query failed", zap.String("feed", req.FeedType), zap.Error(err))
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
		return
	}

	doc := rss{Version: "2.0", Channel: rssChannel{
		Title:     e.Site.Name,
		Link:      e.Site.Home + "/",
		Generator: e.Site.Name + " " + e.Site.Version,
	}}
	for i, p := range posts {
		if i == 0 {
			doc.Channel.LastBuildDate = p.Date.UTC().Format(time.RFC1123Z)
		}
		link := e.Site.Home + routing.PostPath(p.Date, p.Slug)
		body := p.Excerpt
		if body == "" {
			body = p.Body
		}
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        link,
			PubDate:     p.Date.UTC().Format(time.RFC1123Z),
			Description: hook.FilterAs(e.Hooks, hook.ContentFeed, body, req.FeedType),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		http.Error(w, "feed unavailable", http.StatusInternalServerError)
		return
	}
	copyHeaders(w, req)
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
