package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// handleMessage обрабатывает одно сообщение; true — сообщение можно коммитить.
func (c *Consumer) handleMessage(ctx context.Context, msg *kafka.Message) bool {
	d := domain.Delivery{
		MessageID:  messageID(msg.Topic, msg.Partition, msg.Offset),
		Source:     msg.Topic,
		Body:       msg.Value,
		Headers:    headersToMap(msg.Headers),
		ReceivedAt: c.now(),
	}

	err := c.handler.Handle(ctx, d)
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrMalformedPayload):
		// Битое тело: логируем и коммитим вместе с пачкой, чтобы не читать повторно
		c.log.Warnf(ctx, "malformed message partition=%d offset=%d: %v (skipped)", msg.Partition, msg.Offset, err)
		return true
	default:
		c.log.Errorf(ctx, "process failed partition=%d offset=%d: %v (not counted for commit)", msg.Partition, msg.Offset, err)
		return false
	}
}

// commitBatch коммитит пачку. При ошибке пачка сохраняется и уйдёт со следующим коммитом.
func (c *Consumer) commitBatch(ctx context.Context, topic string, pending []kafka.Message) []kafka.Message {
	if err := c.reader.CommitMessages(ctx, pending...); err != nil {
		metrics.AckErrors.WithLabelValues(brokerLabel).Inc()
		c.log.Errorf(ctx, "commit failed messages=%d: %v (will retry with next batch)", len(pending), err)
		return pending
	}

	last := pending[len(pending)-1]
	metrics.KafkaCommitBatches.WithLabelValues(topic).Inc()
	metrics.MessagesAcked.WithLabelValues(brokerLabel, topic).Add(float64(len(pending)))
	c.log.Infof(ctx, "committed offsets messages=%d last_partition=%d last_offset=%d", len(pending), last.Partition, last.Offset)
	return pending[:0]
}

func (c *Consumer) logUncommitted(ctx context.Context, pending []kafka.Message) {
	if len(pending) > 0 {
		c.log.Infof(ctx, "stopping with %d processed but uncommitted messages", len(pending))
	}
}

// messageID — идентификатор доставки Kafka: topic-partition-offset.
func messageID(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s-%d-%d", topic, partition, offset)
}

func headersToMap(hs []kafka.Header) map[string]string {
	if len(hs) == 0 {
		return nil
	}
	m := make(map[string]string, len(hs))
	for _, h := range hs {
		m[h.Key] = string(h.Value)
	}
	return m
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
