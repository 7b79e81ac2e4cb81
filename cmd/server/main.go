package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youruser/memeapp/internal/ads"
	"github.com/youruser/memeapp/internal/api"
	"github.com/youruser/memeapp/internal/caption"
	"github.com/youruser/memeapp/internal/config"
	"github.com/youruser/memeapp/internal/session"
	"github.com/youruser/memeapp/internal/share"
	"github.com/youruser/memeapp/internal/stats"
	"github.com/youruser/memeapp/internal/templates"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg.GinMode)
	gin.SetMode(cfg.GinMode)

	catalog, err := templates.LoadFromDataDir(cfg.DataDir)
	if err != nil {
		slog.Warn("failed to load templates.csv, using built-in templates", "error", err)
		catalog = templates.NewCatalog(templates.Builtin)
	}
	images := templates.NewImages(cfg.DataDir)
	if cfg.WarmTemplates {
		// best-effort; a missing template image only fails its own selection
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n := images.Warm(ctx, catalog.All())
			slog.Info("template images warmed", "loaded", n, "total", len(catalog.All()))
		}()
	}

	h := api.NewHandler(api.Deps{
		Config:   cfg,
		Sessions: session.NewStore(cfg.SessionTTL, cfg.CaptionSeed),
		Catalog:  catalog,
		Images:   images,
		Captions: caption.New(cfg.CaptionSeed, cfg.CaptionDelay),
		Links:    share.NewLinkSharer(cfg.PublicURL, cfg.ShareTTL),
		Ads:      ads.NewInjector(cfg.AdClient, ads.DefaultSlots),
		Stats:    stats.NewCounter(),
	})

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	api.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		slog.Info("starting server", "addr", "http://localhost:"+cfg.Port, "data_dir", cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func setupLogger(mode string) {
	var handler slog.Handler
	if mode == gin.ReleaseMode {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
