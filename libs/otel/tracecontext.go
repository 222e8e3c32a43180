package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TraceContextStrings serializes the active span context to W3C traceparent
// and tracestate values, suitable for storing alongside an outbox row.
func TraceContextStrings(ctx context.Context) (traceparent, tracestate string) {
	c := make(propagation.MapCarrier, 2)
	otel.GetTextMapPropagator().Inject(ctx, c)
	return c["traceparent"], c["tracestate"]
}

// ContextWithTraceContext restores a span context previously captured with
// TraceContextStrings so downstream spans join the original trace.
func ContextWithTraceContext(ctx context.Context, traceparent, tracestate string) context.Context {
	if traceparent == "" && tracestate == "" {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier{
		"traceparent": traceparent,
		"tracestate":  tracestate,
	})
}
