package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestMetricsRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	recorder := NewMetricsRecorder()
	ctx := context.Background()

	recorder.RecordEventCreated(ctx, "BaseEventType", nil)
	recorder.RecordEventTriggered(ctx, "Boiler1", 2, 5*time.Millisecond, nil)
	recorder.RecordEventTriggered(ctx, "Boiler1", 0, time.Millisecond, errors.New("delivery failed"))

	byName := collectMetricNames(t, reader)
	for _, want := range []string{
		"eventspace.events.created",
		"eventspace.events.triggered",
		"eventspace.trigger.latency_ms",
		"eventspace.notifications.delivered",
		"eventspace.trigger.errors",
	} {
		assert.Contains(t, byName, want)
	}

	triggered, ok := byName["eventspace.events.triggered"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range triggered.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	delivered, ok := byName["eventspace.notifications.delivered"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	total = 0
	for _, dp := range delivered.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total, "zero-delivery triggers add nothing")
}

func TestNoopMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopMetrics{}.RecordEventCreated(context.Background(), "t", nil)
		NoopMetrics{}.RecordEventTriggered(context.Background(), "o", 1, time.Millisecond, nil)
	})
}
