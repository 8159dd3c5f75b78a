// Package observability provides structured logging, metrics, and tracing
// for the event subsystem.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// LogEventCreated logs the allocation of a new event instance.
func LogEventCreated(logger *slog.Logger, eventNode, eventType string) {
	if logger == nil {
		return
	}
	logger.Debug("event instance created",
		slog.String("event_node", eventNode),
		slog.String("event_type", eventType),
	)
}

// LogTriggerComplete logs a finished trigger with its fan-out count.
func LogTriggerComplete(logger *slog.Logger, eventID, origin string, delivered int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("event triggered",
		slog.String("event_id", eventID),
		slog.String("origin", origin),
		slog.Int("notified", delivered),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogTriggerError logs a failed trigger. Watchers notified before the
// failure keep their notifications.
func LogTriggerError(logger *slog.Logger, eventNode, origin string, delivered int, err error) {
	if logger == nil {
		return
	}
	logger.Error("event trigger failed",
		slog.String("event_node", eventNode),
		slog.String("origin", origin),
		slog.Int("notified_before_failure", delivered),
		slog.String("error", err.Error()),
	)
}

// LogWhereClauseUnsupported warns that a filter carried a where-clause.
func LogWhereClauseUnsupported(logger *slog.Logger, elements int) {
	if logger == nil {
		return
	}
	logger.Warn("where clauses are not supported by the server",
		slog.Int("elements", elements),
	)
}

// LogEventIDMissing warns that an event instance lost its EventId property.
// The instance is left in the store for diagnosis.
func LogEventIDMissing(logger *slog.Logger, eventNode string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event is missing its EventId attribute",
		slog.String("event_node", eventNode),
		slog.String("error", err.Error()),
	)
}

// LogDeleteFailed warns that the ephemeral event instance could not be
// removed after delivery.
func LogDeleteFailed(logger *slog.Logger, eventNode string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("removing triggered event failed",
		slog.String("event_node", eventNode),
		slog.String("error", err.Error()),
	)
}

// LogHistoryError warns that the event journal rejected a record.
// Journal failures never fail a trigger.
func LogHistoryError(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("event history append failed",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
