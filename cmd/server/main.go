package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yutaka-m/invoicer/internal/config"
	"github.com/yutaka-m/invoicer/internal/render"
	"github.com/yutaka-m/invoicer/internal/service"
	"github.com/yutaka-m/invoicer/internal/source"
	"github.com/yutaka-m/invoicer/internal/web"
	"github.com/yutaka-m/invoicer/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Local overrides from .env, if present.
	_ = godotenv.Load()

	logging.Setup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		slog.Error("failed to build renderer", "error", err)
		os.Exit(1)
	}

	rasterizer := &render.CommandRasterizer{Command: cfg.Export.RasterizerCommand}
	exporter := render.NewExporter(renderer, rasterizer, cfg.Export.Timeout.Std())
	fetcher := source.New(cfg.Source)
	svc := service.New(cfg, fetcher, exporter)

	// Load the catalog once at startup. Failures are not fatal: the UI
	// reports the transport-error or no-products state and the user can
	// refresh once the sheet is fixed.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.FetchTimeout.Std())
	if err := svc.RefreshCatalog(ctx); err != nil {
		slog.Warn("initial catalog load failed", "error", err)
	}
	cancel()

	server := web.NewServer(cfg.Server, svc)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
