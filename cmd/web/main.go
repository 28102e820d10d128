// cmd/web/main.go
//
// Primer – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Console logger so config loading can report problems.
//
//  2. Load configuration (.env → conf/global.yaml → PRIMER_ env), with
//     vault: secrets resolved.
//
//  3. Start the daily rotating logger (tees to console when running in a
//     TTY).
//
//  4. Open the optional GeoLite2 database for requestinfo.
//
//  5. Connect the content database (MySQL via sqlx).
//
//  6. Initialize the theme: host defaults, toggles, modules, setup
//     points, and the URL classifier.
//
//  7. Load templates, build the chi router, and serve until SIGINT or
//     SIGTERM, then drain for up to 15 s.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/bootstrap"
	"github.com/yanizio/primer/internal/config"
	"github.com/yanizio/primer/internal/database"
	"github.com/yanizio/primer/internal/logger"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/requestinfo"
	"github.com/yanizio/primer/internal/server"
	"github.com/yanizio/primer/internal/theme"

	_ "github.com/yanizio/primer/modules/breadcrumb"
	_ "github.com/yanizio/primer/modules/debug"
)

const shutdownGrace = 15 * time.Second

func main() {
	boot := logger.Bootstrap()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		boot.Fatal("load config", zap.Error(err))
	}

	//
	// ── 2.  File logger ─────────────────────────────────────────────────
	//
	log, err := logger.New(cfg.Paths.Root, logger.RunningInTTY(), os.Getenv("PRIMER_LOG_LEVEL"))
	if err != nil {
		boot.Fatal("start logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	//
	// ── 3.  GeoIP (optional) ────────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.Paths.Abs(cfg.Geo.DBPath)); err != nil {
		log.Warn("geoip disabled", zap.Error(err))
	}
	defer requestinfo.CloseGeo()

	//
	// ── 4.  Content DB ──────────────────────────────────────────────────
	//
	log.Info("connecting to content DB …")
	db, err := database.Open(ctx, cfg.Database.ResolvedDSN(), database.Options{
		MaxOpen: cfg.Database.MaxOpen,
		MaxIdle: cfg.Database.MaxIdle,
		Log:     log,
	})
	if err != nil {
		log.Fatal("connect content DB", zap.Error(err))
	}
	defer db.Close()
	log.Info("content DB online")

	//
	// ── 5.  Theme initialization ────────────────────────────────────────
	//
	decl, err := theme.LoadDeclarations(cfg.Paths.Abs(cfg.Theme.Declarations))
	if err != nil {
		log.Fatal("load declarations", zap.Error(err))
	}
	engine, err := bootstrap.Initialize(bootstrap.Options{
		Site: page.SiteInfo{
			Name:    cfg.Site.Name,
			Tagline: cfg.Site.Tagline,
			Home:    cfg.Site.Home,
			Credit:  cfg.Site.Credit,
		},
		Version:         cfg.Site.Version,
		DefaultLayout:   cfg.Theme.DefaultLayout,
		Declarations:    decl,
		DisabledToggles: cfg.Theme.DisabledToggles,
		DB:              db,
		Log:             log,
	})
	if err != nil {
		log.Fatal("initialize theme", zap.Error(err))
	}

	//
	// ── 6.  Router and HTTP server ──────────────────────────────────────
	//
	overrideDir := cfg.Paths.Abs(cfg.Theme.OverrideDir)
	th, err := theme.Load(cfg.Theme.Name, overrideDir)
	if err != nil {
		log.Fatal("load templates", zap.Error(err))
	}
	handler, err := server.New(server.Options{
		Engine:      engine,
		Theme:       th,
		OverrideDir: overrideDir,
		ForceHTTPS:  cfg.HTTP.ForceHTTPS,
		Log:         log,
	})
	if err != nil {
		log.Fatal("build router", zap.Error(err))
	}

	srv := server.NewHTTPServer(cfg.HTTP.ListenAddr, handler)
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.ListenAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}
}
