package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta contains metadata about a gate call for telemetry purposes.
// Claim values and credentials are deliberately absent.
type CallMeta struct {
	Operation string // operation name (required)
	ServerID  string // remote server id for proxied calls (may be empty)
	TenantID  string // resolved tenant (may be empty)
	RequestID string // request id (may be empty)
}

// SpanName returns the deterministic span name for this call.
// Format: gate.call.<operation>, or gate.remote.<server>.<operation> for
// proxied calls.
func (m CallMeta) SpanName() string {
	if m.ServerID != "" {
		return "gate.remote." + m.ServerID + "." + m.Operation
	}
	return "gate.call." + m.Operation
}

// Tracer wraps OpenTelemetry tracing with call-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a gate call.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with call metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("call.operation", meta.Operation),
		attribute.Bool("call.error", false), // updated in EndSpan on error
	}
	if meta.ServerID != "" {
		attrs = append(attrs, attribute.String("remote.server", meta.ServerID))
	}
	if meta.TenantID != "" {
		attrs = append(attrs, attribute.String("tenant.id", meta.TenantID))
	}
	if meta.RequestID != "" {
		attrs = append(attrs, attribute.String("request.id", meta.RequestID))
	}

	kind := trace.SpanKindInternal
	if meta.ServerID != "" {
		kind = trace.SpanKindClient
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("call.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
