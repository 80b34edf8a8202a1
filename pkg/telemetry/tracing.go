package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for livetree spans.
const defaultTracerName = "livetree"

// TracerConfig configures span creation.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "livetree").
	TracerName string

	// Provider is the tracer provider (default: the global provider).
	Provider trace.TracerProvider
}

// TracerOption configures span creation.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// Tracer creates spans around flushes and reconcile passes.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	if config.Provider != nil {
		return &Tracer{tracer: config.Provider.Tracer(config.TracerName)}
	}
	return &Tracer{tracer: otel.Tracer(config.TracerName)}
}

// Start opens a span. On a nil Tracer it returns ctx and the span already
// in ctx (a no-op span when there is none).
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, sets its status and ends it.
func End(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
