package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline/config"
)

func TestInitNone(t *testing.T) {
	shutdown, err := Init(context.Background(), config.Default(), &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProviderStdout(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.TraceExporter = "stdout"

	tp, err := NewTracerProvider(context.Background(), cfg, &buf)
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "pipeline.Parse")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"pipeline.Parse"`)
	assert.Contains(t, buf.String(), `"service.name"`)
}

func TestNewTracerProviderOTLP(t *testing.T) {
	cfg := config.Default()
	cfg.TraceExporter = "otlp"

	// The gRPC exporter connects lazily, so no collector is needed here.
	tp, err := NewTracerProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, tp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = tp.Shutdown(ctx)
}

func TestNewTracerProviderUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.TraceExporter = "zipkin"

	_, err := NewTracerProvider(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}
