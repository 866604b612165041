package llm

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/victornm/tutormate/internal/telemetry"
)

type instrumented struct {
	next Provider
	name string
}

// WithInstrumentation logs, traces and counts every call.
func WithInstrumentation(p Provider, name string) Provider {
	return &instrumented{next: p, name: name}
}

func (i *instrumented) ModelID() string { return i.next.ModelID() }

func (i *instrumented) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := otel.Tracer("tutormate/llm").Start(ctx, "llm.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.provider", i.name),
		attribute.String("llm.model", i.next.ModelID()),
	)
	if req.Schema != nil {
		span.SetAttributes(attribute.String("llm.schema", req.Schema.Name))
	}

	start := time.Now()
	resp, err := i.next.Generate(ctx, req)
	took := time.Since(start)

	telemetry.LLMLatency.WithLabelValues(i.name).Observe(took.Seconds())

	if err != nil {
		telemetry.LLMRequests.WithLabelValues(i.name, "error").Inc()
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		slog.WarnContext(ctx, "llm: generate failed",
			"provider", i.name,
			"model", i.next.ModelID(),
			"took", took,
			"error", err,
		)
		return nil, err
	}

	telemetry.LLMRequests.WithLabelValues(i.name, "ok").Inc()
	slog.DebugContext(ctx, "llm: generated",
		"provider", i.name,
		"model", resp.Model,
		"took", took,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}
