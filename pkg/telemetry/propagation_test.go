package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInjectExtract_RoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := InjectHeaders(ctx)
	if headers["traceparent"] == "" {
		t.Fatalf("traceparent header must be injected, got %v", headers)
	}

	got := trace.SpanContextFromContext(ExtractHeaders(context.Background(), headers))
	if got.TraceID() != span.SpanContext().TraceID() {
		t.Fatalf("trace id lost: got %s want %s", got.TraceID(), span.SpanContext().TraceID())
	}
	if !got.IsRemote() {
		t.Fatalf("extracted span context must be remote")
	}
}

func TestInjectHeaders_NoSpan_Empty(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	if h := InjectHeaders(context.Background()); len(h) != 0 {
		t.Fatalf("want no headers without span, got %v", h)
	}
}

func TestExtractHeaders_EmptyKeepsContext(t *testing.T) {
	ctx := context.Background()
	if got := ExtractHeaders(ctx, nil); got != ctx {
		t.Fatalf("empty headers must return the same context")
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}
