package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Gunvolt24/brokerdemo"

// Tracer — трейсер сервиса (глобальный провайдер; без SetupTracing — no-op).
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// InjectHeaders — контекст трассировки в виде плоских заголовков
// (Kafka headers, атрибуты сообщения SQS). Без активного спана — пустая карта.
func InjectHeaders(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

// ExtractHeaders — восстанавливает родительский контекст трассировки из заголовков доставки.
func ExtractHeaders(ctx context.Context, headers map[string]string) context.Context {
	if len(headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}

// StartProducerSpan / StartConsumerSpan — спаны публикации и обработки сообщения.
func StartProducerSpan(ctx context.Context, broker, destination string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, broker+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", broker),
			attribute.String("messaging.destination.name", destination),
		),
	)
}

func StartConsumerSpan(ctx context.Context, broker, source, messageID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, broker+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", broker),
			attribute.String("messaging.destination.name", source),
			attribute.String("messaging.message.id", messageID),
		),
	)
}
