package sqs

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/pkg/ctxmeta"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// handleMessage — обработка одного сообщения и решение об удалении.
func (c *Consumer) handleMessage(ctx context.Context, msg *types.Message) {
	source := c.cfg.QueueURL
	metrics.MessagesConsumed.WithLabelValues(brokerLabel, source).Inc()

	d := domain.Delivery{
		MessageID:  aws.ToString(msg.MessageId),
		Source:     source,
		Body:       []byte(aws.ToString(msg.Body)),
		Headers:    fromMessageAttributes(msg.MessageAttributes),
		ReceivedAt: c.now(),
	}

	err := c.handler.Handle(ctx, d)
	switch {
	case err == nil:
		c.deleteSafely(ctx, d.MessageID, msg.ReceiptHandle)
	case errors.Is(err, domain.ErrMalformedPayload):
		// Битое тело не станет валидным при повторе: удаляем
		c.log.Warnf(ctx, "malformed message message_id=%s dropped: %v", d.MessageID, err)
		c.deleteSafely(ctx, d.MessageID, msg.ReceiptHandle)
	default:
		c.log.Warnf(ctx, "process failed message_id=%s: %v (left in queue)", d.MessageID, err)
	}
}

// deleteSafely — DeleteMessage с собственным таймаутом; отмена ctx не прерывает
// подтверждение уже обработанного сообщения. Ошибка только логируется.
func (c *Consumer) deleteSafely(ctx context.Context, messageID string, receiptHandle *string) {
	ctxAck, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.ackTimeout)
	defer cancel()

	ctxAck = ctxmeta.WithMessageID(ctxAck, messageID)
	_, err := c.client.DeleteMessage(ctxAck, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		metrics.AckErrors.WithLabelValues(brokerLabel).Inc()
		c.log.Errorf(ctxAck, "delete failed: %v", err)
		return
	}
	metrics.MessagesAcked.WithLabelValues(brokerLabel, c.cfg.QueueURL).Inc()
	c.log.Debugf(ctxAck, "message deleted")
}

// sleepCtx ждет d или останавливается по контексту.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
