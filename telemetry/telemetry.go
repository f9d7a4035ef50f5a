// Package telemetry installs the OpenTelemetry tracer provider selected by
// the service configuration.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/meikuraledutech/pipeline/config"
)

var ErrUnknownExporter = errors.New("telemetry: unknown trace exporter")

// ServiceName identifies the service in exported spans.
const ServiceName = "pipeline"

// Init builds a TracerProvider for cfg.TraceExporter and registers it as the
// global provider. Stdout spans are written to w. With "none" nothing is
// registered and the returned shutdown is a no-op.
//
// The returned shutdown flushes pending spans and must be called on exit.
func Init(ctx context.Context, cfg config.Config, w io.Writer) (shutdown func(context.Context) error, err error) {
	if cfg.TraceExporter == "none" || cfg.TraceExporter == "" {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := NewTracerProvider(ctx, cfg, w)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewTracerProvider returns a batching TracerProvider exporting to the
// configured exporter. It does not touch the global provider.
func NewTracerProvider(ctx context.Context, cfg config.Config, w io.Writer) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch cfg.TraceExporter {
	case "otlp":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.TraceExporter)
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry: create %s exporter: %w", cfg.TraceExporter, err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", ServiceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}
