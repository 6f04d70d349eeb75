package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

const brokerLabel = "kafka"

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// reader — минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// Consumer — обёртка над kafka.Reader: обработка по одному сообщению,
// коммит оффсетов пачками по batchSize.
type Consumer struct {
	reader     reader
	handler    ports.MessageHandler
	log        ports.Logger
	batchSize  int
	retryDelay time.Duration
	now        func() time.Time
	closeOnce  sync.Once
}

// NewConsumer — конструктор. ReaderConfig() настроен на ручной коммит оффсетов.
func NewConsumer(cfg *ConsumerConfig, handler ports.MessageHandler, log ports.Logger) *Consumer {
	return newConsumer(kafka.NewReader(cfg.ReaderConfig()), cfg, handler, log)
}

func newConsumer(r reader, cfg *ConsumerConfig, handler ports.MessageHandler, log ports.Logger) *Consumer {
	bs := cfg.CommitBatchSize
	if bs <= 0 {
		bs = 10
	}

	rd := cfg.RetryDelay
	if rd <= 0 {
		rd = 5 * time.Second
	}

	return &Consumer{
		reader:     r,
		handler:    handler,
		log:        log,
		batchSize:  bs,
		retryDelay: rd,
		now:        time.Now,
	}
}

// Run — основной цикл:
// 1) читаем сообщение без авто-коммита;
// 2) успешная обработка или битое тело → сообщение в пачку на коммит;
// 3) пачка набрала batchSize → CommitMessages;
// 4) ошибка обработки → не считаем, пауза retryDelay.
// При остановке неполная пачка не коммитится: эти сообщения группа прочитает снова.
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v batch=%d",
		rc.Topic, rc.GroupID, rc.Brokers, c.batchSize)

	pending := make([]kafka.Message, 0, c.batchSize)
	// sinceCommit — сообщений с последней попытки коммита; после неудачной попытки
	// пачка остаётся в pending и уходит вместе со следующей полной пачкой.
	sinceCommit := 0

	for {
		// Читаем сообщение (без автокоммита)
		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			// Если контекст отменен -> выходим
			if ctx.Err() != nil {
				c.logUncommitted(ctx, pending)
				return ctx.Err()
			}
			// Иначе - ошибка брокера/сети. Ждём фиксированную паузу и повторяем
			metrics.PollErrors.WithLabelValues(brokerLabel).Inc()
			c.log.Errorf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, c.retryDelay)
			if !sleepCtx(ctx, c.retryDelay) {
				c.logUncommitted(ctx, pending)
				return ctx.Err()
			}
			continue
		}

		metrics.MessagesConsumed.WithLabelValues(brokerLabel, msg.Topic).Inc()

		if done := c.handleMessage(ctx, &msg); !done {
			if !sleepCtx(ctx, c.retryDelay) {
				c.logUncommitted(ctx, pending)
				return ctx.Err()
			}
			continue
		}

		pending = append(pending, msg)
		sinceCommit++
		if sinceCommit >= c.batchSize {
			pending = c.commitBatch(ctx, rc.Topic, pending)
			sinceCommit = 0
		}
	}
}

// Close - закрывает reader. Вызывается при остановке приложения.
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}
