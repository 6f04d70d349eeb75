package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/ctxmeta"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/Gunvolt24/brokerdemo/pkg/telemetry"
	"go.opentelemetry.io/otel/codes"
)

var _ ports.MessageHandler = (*DeliveryHandler)(nil)

// DeliveryHandler — путь консьюмера: parse → (dedupe) → process.
// Подтверждение (delete/commit) остаётся за адаптером брокера.
type DeliveryHandler struct {
	processor      ports.Processor
	tracker        ports.DeliveryTracker
	log            ports.Logger
	broker         string
	processTimeout time.Duration
}

// NewDeliveryHandler — tracker может быть nil (без защиты от повторной обработки).
// broker — метка для метрик и спанов (sqs|kafka).
func NewDeliveryHandler(
	processor ports.Processor,
	tracker ports.DeliveryTracker,
	log ports.Logger,
	broker string,
	processTimeout time.Duration,
) *DeliveryHandler {
	if processTimeout <= 0 {
		processTimeout = 30 * time.Second
	}
	return &DeliveryHandler{
		processor:      processor,
		tracker:        tracker,
		log:            log,
		broker:         broker,
		processTimeout: processTimeout,
	}
}

// Handle — обработка одной доставки.
//   - тело не разбирается → domain.ErrMalformedPayload (адаптер подтверждает и отбрасывает);
//   - доставка уже обработана (redelivery) → nil без повторной обработки;
//   - ошибка процессора → возвращается как есть (сообщение остаётся брокеру).
func (h *DeliveryHandler) Handle(ctx context.Context, d domain.Delivery) (err error) {
	ctx = telemetry.ExtractHeaders(ctx, d.Headers)
	ctx, span := telemetry.StartConsumerSpan(ctx, h.broker, d.Source, d.MessageID)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	ctx = ctxmeta.WithMessageID(ctx, d.MessageID)

	h.log.Infof(ctx, "processing message source=%s", d.Source)
	h.log.Debugf(ctx, "message body=%s", d.Body)

	env, err := domain.ParseEnvelope(d.Body)
	if err != nil {
		metrics.MessagesMalformed.WithLabelValues(h.broker, d.Source).Inc()
		h.log.Warnf(ctx, "failed to parse message body: %v", err)
		return err
	}
	h.log.Infof(ctx, "parsed message id=%s timestamp=%s", env.ID, env.Timestamp.Format(time.RFC3339Nano))

	if h.tracker != nil && h.tracker.Seen(ctx, d.MessageID) {
		h.log.Infof(ctx, "duplicate delivery skipped id=%s", env.ID)
		return nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, h.processTimeout)
	err = h.processor.Process(ctxTimeout, env)
	cancel()
	if err != nil {
		metrics.MessagesFailed.WithLabelValues(h.broker, d.Source).Inc()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			h.log.Errorf(ctx, "processing timed out id=%s after %s", env.ID, h.processTimeout)
		} else {
			h.log.Errorf(ctx, "processing failed id=%s err=%v", env.ID, err)
		}
		return err
	}

	if h.tracker != nil {
		h.tracker.MarkProcessed(ctx, d.MessageID)
	}
	metrics.MessagesProcessed.WithLabelValues(h.broker, d.Source).Inc()
	return nil
}
