package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the eventspace tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("eventspace")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartCreateSpan starts a span covering an event instance creation.
	StartCreateSpan(ctx context.Context, eventType string) (context.Context, trace.Span)

	// StartTriggerSpan starts a span covering a trigger and its fan-out.
	StartTriggerSpan(ctx context.Context, eventNode, origin string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartCreateSpan starts a span covering an event instance creation.
func (m *otelSpanManager) StartCreateSpan(ctx context.Context, eventType string) (context.Context, trace.Span) {
	return StartCreateSpan(ctx, eventType)
}

// StartTriggerSpan starts a span covering a trigger and its fan-out.
func (m *otelSpanManager) StartTriggerSpan(ctx context.Context, eventNode, origin string) (context.Context, trace.Span) {
	return StartTriggerSpan(ctx, eventNode, origin)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// Convenience functions that operate on the global tracer.

// StartCreateSpan starts a span covering an event instance creation.
// Uses the global OTel tracer.
func StartCreateSpan(ctx context.Context, eventType string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventspace.create",
		trace.WithAttributes(
			attribute.String("event.type", eventType),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartTriggerSpan starts a span covering a trigger and its fan-out.
// Uses the global OTel tracer.
func StartTriggerSpan(ctx context.Context, eventNode, origin string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventspace.trigger",
		trace.WithAttributes(
			attribute.String("event.node", eventNode),
			attribute.String("event.origin", origin),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
