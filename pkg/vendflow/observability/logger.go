// Package observability provides structured logging and metrics for
// vendflow: slog helpers for the dispatch side-channel diagnostics and
// OpenTelemetry metrics for publish/drain activity.
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with batch_id and machine count fields.
func EnrichLogger(logger *slog.Logger, batchID string, machines int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("batch_id", batchID),
		slog.Int("machines", machines),
	)
}

// LogNoSubscriber logs a publish that found no registered handlers.
// This is a configuration gap, not a fault; dispatch continues.
func LogNoSubscriber(logger *slog.Logger, kind, eventID string) {
	if logger == nil {
		return
	}
	logger.Warn("no subscriber for event kind",
		slog.String("kind", kind),
		slog.String("event_id", eventID),
	)
}

// LogUnsubscribeMiss logs an unsubscribe whose target was not registered.
func LogUnsubscribeMiss(logger *slog.Logger, kind string) {
	if logger == nil {
		return
	}
	logger.Warn("unsubscribe target not found",
		slog.String("kind", kind),
	)
}

// LogUnknownMachine logs an event referencing a machine absent from the
// inventory. The handler skips the mutation; dispatch continues.
func LogUnknownMachine(logger *slog.Logger, machineID, kind, eventID string) {
	if logger == nil {
		return
	}
	logger.Error("event references unknown machine",
		slog.String("machine_id", machineID),
		slog.String("kind", kind),
		slog.String("event_id", eventID),
	)
}

// LogBatchStart logs the start of a drain pass.
func LogBatchStart(logger *slog.Logger, events int) {
	if logger == nil {
		return
	}
	logger.Info("batch drain starting",
		slog.Int("initial_events", events),
	)
}

// LogBatchComplete logs successful drain completion.
func LogBatchComplete(logger *slog.Logger, processed int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("batch drain completed",
		slog.Int("events_processed", processed),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogBatchError logs drain failure.
func LogBatchError(logger *slog.Logger, processed int, err error) {
	if logger == nil {
		return
	}
	logger.Error("batch drain failed",
		slog.Int("events_processed", processed),
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
