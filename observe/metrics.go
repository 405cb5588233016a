package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records gate call and remote discovery metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records a gate call with duration and error status.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordDiscovery records a remote catalog refresh for one server.
	RecordDiscovery(ctx context.Context, serverID string, toolCount int, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter          metric.Meter
	callTotal      metric.Int64Counter
	callErrors     metric.Int64Counter
	callDuration   metric.Float64Histogram
	discoveryTotal metric.Int64Counter
	discoveryTools metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	callTotal, err := meter.Int64Counter(
		"gate.call.total",
		metric.WithDescription("Total number of gate calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callErrors, err := meter.Int64Counter(
		"gate.call.errors",
		metric.WithDescription("Total number of failed gate calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"gate.call.duration_ms",
		metric.WithDescription("Gate call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	discoveryTotal, err := meter.Int64Counter(
		"gate.discovery.total",
		metric.WithDescription("Total number of remote catalog refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	discoveryTools, err := meter.Int64Counter(
		"gate.discovery.tools",
		metric.WithDescription("Total number of remote tools discovered"),
		metric.WithUnit("{tool}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		callTotal:      callTotal,
		callErrors:     callErrors,
		callDuration:   callDuration,
		discoveryTotal: discoveryTotal,
		discoveryTools: discoveryTools,
	}, nil
}

// RecordCall records metrics for one gate call.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("call.operation", meta.Operation),
	}
	if meta.ServerID != "" {
		attrs = append(attrs, attribute.String("remote.server", meta.ServerID))
	}

	opt := metric.WithAttributes(attrs...)

	m.callTotal.Add(ctx, 1, opt)
	if err != nil {
		m.callErrors.Add(ctx, 1, opt)
	}
	m.callDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordDiscovery records one server's catalog refresh outcome.
func (m *metricsImpl) RecordDiscovery(ctx context.Context, serverID string, toolCount int, err error) {
	opt := metric.WithAttributes(
		attribute.String("remote.server", serverID),
		attribute.Bool("refresh.error", err != nil),
	)

	m.discoveryTotal.Add(ctx, 1, opt)
	if err == nil && toolCount > 0 {
		m.discoveryTools.Add(ctx, int64(toolCount), opt)
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics creates a no-op Metrics.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordDiscovery(ctx context.Context, serverID string, toolCount int, err error) {
}
