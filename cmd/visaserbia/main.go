// Package main is the entry point for the visa service API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visaserbia/config"
	"visaserbia/internal/applications"
	"visaserbia/internal/cache"
	"visaserbia/internal/core"
	"visaserbia/internal/logging"
	"visaserbia/internal/server"
	"visaserbia/internal/storage"
	"visaserbia/internal/testimonials"
	"visaserbia/internal/users"
	"visaserbia/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	logging.Setup()
	slog.Info("starting visaserbia", "version", version.Version, "commit", version.Commit)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	catalog := core.DefaultCatalog()
	if cfg.Catalog.File != "" {
		catalog, err = core.LoadCatalog(cfg.Catalog.File)
		if err != nil {
			slog.Error("failed to load visa catalog", "file", cfg.Catalog.File, "error", err)
			os.Exit(1)
		}
		slog.Info("visa catalog loaded from file", "file", cfg.Catalog.File, "types", len(catalog.List()))
	}

	ctx := context.Background()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "type", store.Type())

	userStore, err := users.NewStore(ctx, store)
	if err != nil {
		slog.Error("failed to initialize user store", "error", err)
		os.Exit(1)
	}
	appStore, err := applications.NewStore(ctx, store)
	if err != nil {
		slog.Error("failed to initialize application store", "error", err)
		os.Exit(1)
	}
	storyStore, err := testimonials.NewStore(ctx, store)
	if err != nil {
		slog.Error("failed to initialize testimonial store", "error", err)
		os.Exit(1)
	}

	snapCache, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "type", cfg.Cache.Type, "error", err)
		os.Exit(1)
	}
	defer snapCache.Close()
	public := testimonials.NewCachedReader(storyStore, snapCache, cfg.Cache.TTL)
	slog.Info("testimonial cache initialized", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)

	if cfg.Admin.Password == "" {
		slog.Warn("ADMIN_PASSWORD not set - admin endpoints will refuse all requests")
	}
	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	handler := server.NewHandler(catalog, userStore, appStore, storyStore, public, store)
	srv := server.New(handler, &server.Config{
		AdminUsername:   cfg.Admin.Username,
		AdminPassword:   cfg.Admin.Password,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
	})

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}
