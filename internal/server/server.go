// internal/server/server.go
//
// Router assembly.
//
// Context
// -------
// One chi router serves the whole site:
//
//   /metrics              Prometheus exposition
//   /wp-json/...          REST endpoints, only while rest_enabled holds;
//                         routes come from rest_api_init callbacks
//   /themes/<name>/assets static files from the theme override dir
//   /<module>/...         module routes (internal/module.Router)
//   everything else       the page handler (classify, template_redirect,
//                         feed or compose, render)
//
// Middleware order: Recoverer, ForceHTTPS, Security headers, requestinfo.
//
// Notes
// -----
// • The router is built after bootstrap.Initialize, so every toggle has
//   already shaped the registry it reads.
// • Oxford commas, two spaces after periods.

package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/bootstrap"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/host"
	"github.com/yanizio/primer/internal/middleware"
	"github.com/yanizio/primer/internal/module"
	"github.com/yanizio/primer/internal/requestinfo"
	"github.com/yanizio/primer/internal/theme"
)

// Options configures New.
type Options struct {
	Engine      *bootstrap.Engine
	Theme       *theme.Theme
	OverrideDir string
	ForceHTTPS  bool
	Log         *zap.Logger
}

// Server holds the page handler's collaborators.
type Server struct {
	engine *bootstrap.Engine
	theme  *theme.Theme
	log    *zap.Logger
}

// New returns the site's root handler.
func New(opts Options) (http.Handler, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{engine: opts.Engine, theme: opts.Theme, log: log.Named("server")}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler { return middleware.ForceHTTPS(opts.ForceHTTPS, next) })
	r.Use(middleware.Security)
	r.Use(requestinfo.Middleware(log))

	r.Handle("/metrics", promhttp.Handler())

	if host.RestEnabled(s.engine.Hooks) {
		api := chi.NewRouter()
		api.Use(s.jsonp)
		s.engine.Hooks.DispatchAction(hook.RestAPIInit, chi.Router(api))
		r.Mount("/wp-json", api)
	} else {
		r.Handle("/wp-json/*", http.HandlerFunc(restDisabled))
	}

	if opts.OverrideDir != "" {
		assets := filepath.Join(opts.OverrideDir, "assets")
		if fi, err := os.Stat(assets); err == nil && fi.IsDir() {
			prefix := "/themes/" + s.theme.Name + "/assets/"
			r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(assets))))
		}
	}

	if err := module.Mount(r); err != nil {
		return nil, err
	}

	r.Get("/", s.page)
	r.Get("/*", s.page)
	r.NotFound(s.page)
	return r, nil
}
