// Пакет ctxmeta — нейтральный слой для метаданных, которые прокидываются
// через context.Context: request_id HTTP-запроса, message_id доставки из брокера,
// trace/span активного спана OpenTelemetry.
// HTTP-слой, консьюмеры и логгер зависят от этого пакета, но не друг от друга.
package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const (
	KeyRequestID ctxKey = "request_id"
	KeyMessageID ctxKey = "message_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return valueOf(ctx, KeyRequestID)
}

// WithMessageID кладёт идентификатор доставки брокера в контекст.
func WithMessageID(ctx context.Context, messageID string) context.Context {
	return withValue(ctx, KeyMessageID, messageID)
}

// MessageIDFromContext достаёт идентификатор доставки из контекста.
func MessageIDFromContext(ctx context.Context) (string, bool) {
	return valueOf(ctx, KeyMessageID)
}

// TraceIDFromContext — trace_id активного спана; без спана → "", false.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.TraceID().String(), true
}

// SpanIDFromContext — span_id активного спана; без спана → "", false.
func SpanIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", false
	}
	return sc.SpanID().String(), true
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOf(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
