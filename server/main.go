package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meikuraledutech/pipeline/api"
	"github.com/meikuraledutech/pipeline/config"
	"github.com/meikuraledutech/pipeline/telemetry"
)

func main() {
	cfg, err := config.Load(os.Getenv("PIPELINE_CONFIG"))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg, os.Stdout)
	if err != nil {
		logger.Error("init tracing", "error", err)
		os.Exit(1)
	}

	app := api.New(cfg, logger)
	serveErr := app.Listen(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("shutdown tracing", "error", err)
	}

	if serveErr != nil {
		logger.Error("server stopped", "error", serveErr)
		os.Exit(1)
	}
}
