// Package api serves the pipeline checker over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/meikuraledutech/pipeline/config"
)

// App wraps the fiber application together with its metrics registry.
type App struct {
	fiber   *fiber.App
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
}

// Option customises an App.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
}

// WithTracerProvider sets the provider parse spans are recorded with.
// By default the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// New wires middleware and routes for cfg.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) *App {
	o := options{tracerProvider: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: newMetrics(reg),
		tracer:  o.tracerProvider.Tracer("github.com/meikuraledutech/pipeline/api"),
	}

	a.fiber = fiber.New(fiber.Config{
		AppName:      "pipeline",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: a.handleError,
	})

	a.fiber.Use(recoverer.New())
	a.fiber.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	a.fiber.Use(accessLog(logger))
	a.fiber.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: true,
	}))

	a.fiber.Get("/", a.root)
	a.fiber.Post("/pipelines/parse", a.parsePipeline)
	if cfg.MetricsEnabled {
		a.fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	return a
}

// Handler exposes the underlying fiber app, mainly for tests.
func (a *App) Handler() *fiber.App {
	return a.fiber
}

// Listen serves on the configured address until ctx is cancelled and then
// shuts down within the configured timeout.
func (a *App) Listen(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("api: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Listen on an existing listener, which it takes ownership of.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- a.fiber.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	a.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return fmt.Errorf("api: listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", a.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.fiber.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("api: listen: %w", err)
	}
	return nil
}

// handleError renders errors that escape a handler as {"error": ...}.
func (a *App) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	// Oversized bodies are rejected before any handler runs; only the parse
	// route accepts a body.
	if code == fiber.StatusRequestEntityTooLarge {
		a.metrics.observeInvalid()
	}
	if code >= fiber.StatusInternalServerError {
		a.logger.Error("request failed",
			"request_id", requestid.FromContext(c),
			"path", c.Path(),
			"error", err,
		)
	}
	msg := err.Error()
	if fe != nil {
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
