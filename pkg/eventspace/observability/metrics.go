package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event subsystem metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventCreated records an event instance allocation.
	RecordEventCreated(ctx context.Context, eventType string, err error)

	// RecordEventTriggered records a trigger with its fan-out count,
	// duration, and error status.
	RecordEventTriggered(ctx context.Context, origin string, delivered int, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsCreated  metric.Int64Counter
	eventsTriggers metric.Int64Counter
	triggerLatency metric.Float64Histogram
	notifications  metric.Int64Counter
	triggerErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventspace")

	eventsCreated, err := meter.Int64Counter("eventspace.events.created",
		metric.WithDescription("Number of event instances created"),
	)
	if err != nil {
		return nil, err
	}

	eventsTriggers, err := meter.Int64Counter("eventspace.events.triggered",
		metric.WithDescription("Number of event triggers"),
	)
	if err != nil {
		return nil, err
	}

	triggerLatency, err := meter.Float64Histogram("eventspace.trigger.latency_ms",
		metric.WithDescription("Trigger fan-out latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	notifications, err := meter.Int64Counter("eventspace.notifications.delivered",
		metric.WithDescription("Number of notifications enqueued for watchers"),
	)
	if err != nil {
		return nil, err
	}

	triggerErrors, err := meter.Int64Counter("eventspace.trigger.errors",
		metric.WithDescription("Number of failed triggers"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsCreated:  eventsCreated,
		eventsTriggers: eventsTriggers,
		triggerLatency: triggerLatency,
		notifications:  notifications,
		triggerErrors:  triggerErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEventCreated records an event instance allocation.
func (m *otelMetrics) RecordEventCreated(ctx context.Context, eventType string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.Bool("success", err == nil),
	}
	m.eventsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEventTriggered records a trigger.
func (m *otelMetrics) RecordEventTriggered(ctx context.Context, origin string, delivered int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("origin", origin),
	}
	m.eventsTriggers.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.triggerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if delivered > 0 {
		m.notifications.Add(ctx, int64(delivered), metric.WithAttributes(attrs...))
	}
	if err != nil {
		m.triggerErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
