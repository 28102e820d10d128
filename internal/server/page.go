// internal/server/page.go
//
// Page handler.
//
// Flow per request
// ----------------
//  1. Classify the URL into a request.Context and copy the device and bot
//     flags from requestinfo.
//  2. Resolve the queried post or page, so template_redirect callbacks
//     see its id, or the not-found state.
//  3. Dispatch template_redirect.  A callback that redirects halts the
//     request here.
//  4. Feeds dispatch do_feed_<type>.  A halted feed is a redirect; a feed
//     the site no longer serves becomes a 404 page; otherwise the RSS
//     document is written.
//  5. Compose the document, render the layout into a buffer, then write
//     headers, status, and body.
//
// Every composed page increments primer_page_render_total{status}.

package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/content"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/metrics"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/requestinfo"
	"github.com/yanizio/primer/internal/theme"
)

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	e := s.engine
	req := e.Classifier.Classify(r)
	requestinfo.FromContext(r.Context()).Apply(req)
	s.resolve(r, req)

	e.Hooks.DispatchAction(hook.TemplateRedirect, req)
	if s.redirected(w, r, req) {
		return
	}

	if req.Type == request.Feed && !req.IsNotFound() {
		e.Hooks.DispatchAction(hook.DoFeed(req.FeedType), req)
		if s.redirected(w, r, req) {
			return
		}
		if e.Site.ServesFeed(req.FeedType) {
			s.feed(w, r, req)
			return
		}
		req.SetNotFound()
	}

	doc := e.Composer.Compose(r.Context(), req)
	if s.redirected(w, r, req) {
		return
	}

	var buf bytes.Buffer
	err := s.theme.Render(&buf, theme.Page{Doc: doc, Home: e.Site.Home})
	if err != nil {
		s.log.Error("render failed", zap.String("path", r.URL.Path), zap.Error(err))
		metrics.PageRenderTotal.WithLabelValues("500").Inc()
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	status := doc.Status()
	copyHeaders(w, req)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	metrics.PageRenderTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// resolve looks up the queried post or page.  A lookup error other than
// not-found leaves the request unresolved; the content region reports it.
func (s *Server) resolve(r *http.Request, req *request.Context) {
	if req.Type != request.Single && req.Type != request.Page {
		return
	}
	postType := "post"
	if req.Type == request.Page {
		postType = "page"
	}
	p, err := s.engine.Content.PostBySlug(r.Context(), req.Slug, postType)
	switch {
	case errors.Is(err, content.ErrNotFound):
		req.SetNotFound()
	case err != nil:
		s.log.Warn("resolve failed", zap.String("slug", req.Slug), zap.Error(err))
	default:
		req.ObjectID = p.ID
	}
}

// redirected writes a scheduled redirect and reports whether it did.
func (s *Server) redirected(w http.ResponseWriter, r *http.Request, req *request.Context) bool {
	loc, code, ok := req.Redirection()
	if !ok {
		return false
	}
	copyHeaders(w, req)
	http.Redirect(w, r, loc, code)
	return true
}

func copyHeaders(w http.ResponseWriter, req *request.Context) {
	for k, vs := range req.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
}
