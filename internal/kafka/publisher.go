package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/Gunvolt24/brokerdemo/pkg/telemetry"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/codes"
)

const flushTimeout = 10 * time.Second

var _ ports.Publisher = (*Publisher)(nil)

// producer — минимальный контракт над kgo.Client для подмены в тестах.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Flush(ctx context.Context) error
	Close()
}

type PublisherConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Publisher — синхронная публикация конвертов в топик.
// Возвращает идентификатор вида topic-partition-offset.
type Publisher struct {
	client    producer
	topic     string
	log       ports.Logger
	closeOnce sync.Once
}

// NewPublisher — пустой список брокеров → domain.ErrConfiguration.
// Пустой топик допустим: ошибка вернётся из Publish.
func NewPublisher(cfg PublisherConfig, log ports.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: Kafka bootstrap servers are not configured", domain.ErrConfiguration)
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: kafka client: %w", domain.ErrConfiguration, err)
	}
	return newPublisher(client, cfg.Topic, log), nil
}

func newPublisher(client producer, topic string, log ports.Logger) *Publisher {
	return &Publisher{client: client, topic: strings.TrimSpace(topic), log: log}
}

// Publish — запись с ключом id и телом-конвертом; ждёт подтверждения брокера.
func (p *Publisher) Publish(ctx context.Context, env domain.Envelope) (_ string, err error) {
	if p.topic == "" {
		metrics.MessagesPublishFailed.WithLabelValues(brokerLabel).Inc()
		return "", fmt.Errorf("%w: Kafka topic is not configured", domain.ErrConfiguration)
	}

	ctx, span := telemetry.StartProducerSpan(ctx, brokerLabel, p.topic)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	value, err := env.Marshal()
	if err != nil {
		metrics.MessagesPublishFailed.WithLabelValues(brokerLabel).Inc()
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	rec := &kgo.Record{
		Topic:   p.topic,
		Key:     []byte(env.ID),
		Value:   value,
		Headers: mapToHeaders(telemetry.InjectHeaders(ctx)),
	}

	out, err := p.client.ProduceSync(ctx, rec).First()
	if err != nil {
		metrics.MessagesPublishFailed.WithLabelValues(brokerLabel).Inc()
		return "", fmt.Errorf("%w: produce: %w", domain.ErrBrokerUnavailable, err)
	}

	metrics.MessagesPublished.WithLabelValues(brokerLabel).Inc()
	id := messageID(out.Topic, int(out.Partition), out.Offset)
	p.log.Debugf(ctx, "kafka record produced id=%s message_id=%s", env.ID, id)
	return id, nil
}

// Close — дожидается отправки буфера (не дольше flushTimeout) и закрывает клиента.
func (p *Publisher) Close() (retErr error) {
	p.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := p.client.Flush(ctx); err != nil {
			retErr = fmt.Errorf("flush: %w", err)
		}
		p.client.Close()
	})
	return retErr
}

func mapToHeaders(m map[string]string) []kgo.RecordHeader {
	if len(m) == 0 {
		return nil
	}
	hs := make([]kgo.RecordHeader, 0, len(m))
	for k, v := range m {
		hs = append(hs, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return hs
}
