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

// MetricsRecorder records vendflow dispatch metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish with its fan-out size, duration, and
	// error status.
	RecordPublish(ctx context.Context, kind string, subscribers int, duration time.Duration, err error)

	// RecordBatch records a completed (or failed) drain pass.
	RecordBatch(ctx context.Context, eventsProcessed int, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes      metric.Int64Counter
	publishLatency metric.Float64Histogram
	publishFaults  metric.Int64Counter
	batchRuns      metric.Int64Counter
	batchLatency   metric.Float64Histogram
	batchEvents    metric.Int64Histogram
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
	meter := otel.Meter("vendflow")

	publishes, err := meter.Int64Counter("vendflow.publish.count",
		metric.WithDescription("Number of events published"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("vendflow.publish.latency_ms",
		metric.WithDescription("Publish fan-out latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	publishFaults, err := meter.Int64Counter("vendflow.publish.faults",
		metric.WithDescription("Number of publishes aborted by a handler fault"),
	)
	if err != nil {
		return nil, err
	}

	batchRuns, err := meter.Int64Counter("vendflow.batch.runs",
		metric.WithDescription("Number of batch drain passes"),
	)
	if err != nil {
		return nil, err
	}

	batchLatency, err := meter.Float64Histogram("vendflow.batch.latency_ms",
		metric.WithDescription("Batch drain latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	batchEvents, err := meter.Int64Histogram("vendflow.batch.events",
		metric.WithDescription("Events processed per drain pass"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:      publishes,
		publishLatency: publishLatency,
		publishFaults:  publishFaults,
		batchRuns:      batchRuns,
		batchLatency:   batchLatency,
		batchEvents:    batchEvents,
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

// RecordPublish records one publish.
func (m *otelMetrics) RecordPublish(ctx context.Context, kind string, subscribers int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.Int("subscribers", subscribers),
	}

	m.publishes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.publishLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.publishFaults.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordBatch records a drain pass.
func (m *otelMetrics) RecordBatch(ctx context.Context, eventsProcessed int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
	}
	m.batchRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.batchLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	m.batchEvents.Record(ctx, int64(eventsProcessed), metric.WithAttributes(attrs...))
}
