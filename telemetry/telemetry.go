// Package telemetry defines the logging, metrics and tracing seams used
// throughout the bridge. Implementations are swappable: the server defaults
// to no-op implementations and wires zerolog/OpenTelemetry backends only
// when configured with one, so unit tests never need a live collector.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger captures structured logging used throughout the bridge. The
// interface is intentionally small so tests can supply lightweight stubs.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter and histogram helpers for bridge instrumentation.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer abstracts span creation so bridge code can remain agnostic of the
// underlying OpenTelemetry provider.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	Span(ctx context.Context) Span
}

// Span represents an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// RequestTelemetry captures observability metadata collected during a single
// translated ledger request. The Extra map holds request-kind-specific data
// (e.g. the resolved template id, choice name, contract id).
type RequestTelemetry struct {
	// DurationMs is the wall-clock execution time in milliseconds.
	DurationMs int64
	// RequestKind identifies the translated request (create, exercise, ...).
	RequestKind string
	// Extra holds request-kind-specific metadata not captured by common fields.
	Extra map[string]any
}
