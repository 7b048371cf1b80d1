// Package main is the entry point for the landing page server.
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
	"visaserbia/internal/core"
	"visaserbia/internal/httpclient"
	"visaserbia/internal/landing"
	"visaserbia/internal/logging"
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
	slog.Info("starting landing server", "version", version.Version, "commit", version.Commit)

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
	}

	if cfg.Landing.BackendURL == "" {
		slog.Warn("BACKEND_URL not set - testimonial section will render its empty state")
	}
	client := landing.NewTestimonialsClient(cfg.Landing.BackendURL, httpclient.New(nil))

	srv, err := landing.New(catalog, client, cfg.Landing)
	if err != nil {
		slog.Error("failed to create landing server", "error", err)
		os.Exit(1)
	}

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

	addr := ":" + cfg.Landing.Port
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
