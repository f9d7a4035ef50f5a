package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/meikuraledutech/pipeline"
)

func (a *App) root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Pipeline API is running!"})
}

// parsePipeline answers POST /pipelines/parse with node and edge counts and
// whether the submitted graph is acyclic.
func (a *App) parsePipeline(c fiber.Ctx) error {
	ctx, span := a.tracer.Start(c.Context(), "pipeline.Parse", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	p, err := pipeline.Unmarshal(c.Body())
	if err != nil {
		a.metrics.observeInvalid()

		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			span.SetStatus(codes.Error, "invalid pipeline")
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "invalid pipeline",
				"details": verr.Fields,
			})
		}
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	start := time.Now()
	result := pipeline.Parse(p)
	a.metrics.observe(result, time.Since(start))

	span.SetAttributes(
		attribute.Int("pipeline.num_nodes", result.NumNodes),
		attribute.Int("pipeline.num_edges", result.NumEdges),
		attribute.Bool("pipeline.is_dag", result.IsDAG),
	)
	a.logger.DebugContext(ctx, "pipeline parsed",
		"num_nodes", result.NumNodes,
		"num_edges", result.NumEdges,
		"is_dag", result.IsDAG,
	)

	return c.JSON(result)
}
