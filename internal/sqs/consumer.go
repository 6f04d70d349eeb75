package sqs

import (
	"context"
	"strings"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer)(nil)

// Consumer — цикл long poll очереди SQS с удалением каждого обработанного сообщения.
type Consumer struct {
	client     API
	handler    ports.MessageHandler
	log        ports.Logger
	cfg        ConsumerConfig
	retryDelay time.Duration
	ackTimeout time.Duration
	emptyDelay time.Duration
	now        func() time.Time
}

// NewConsumer — конструктор; нулевые задержки заменяются значениями по умолчанию.
func NewConsumer(client API, cfg ConsumerConfig, handler ports.MessageHandler, log ports.Logger) *Consumer {
	cfg.QueueURL = strings.TrimSpace(cfg.QueueURL)

	rd := cfg.RetryDelay
	if rd <= 0 {
		rd = 5 * time.Second
	}

	at := cfg.AckTimeout
	if at <= 0 {
		at = 5 * time.Second
	}

	ed := cfg.EmptyPollDelay
	if ed <= 0 {
		ed = time.Second
	}

	return &Consumer{
		client:     client,
		handler:    handler,
		log:        log,
		cfg:        cfg,
		retryDelay: rd,
		ackTimeout: at,
		emptyDelay: ed,
		now:        time.Now,
	}
}

// Run — основной цикл:
// 1) ReceiveMessage (long poll);
// 2) каждое сообщение → handler;
// 3) успех или битое тело → DeleteMessage;
// 4) ошибка обработки → сообщение остаётся в очереди (вернётся после visibility timeout).
// Ошибки опроса логируются, после паузы retryDelay опрос повторяется.
func (c *Consumer) Run(ctx context.Context) error {
	input := c.cfg.ReceiveInput()
	c.log.Infof(ctx, "sqs consumer started queue=%s max_messages=%d wait=%ds",
		c.cfg.QueueURL, input.MaxNumberOfMessages, input.WaitTimeSeconds)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		out, err := c.client.ReceiveMessage(ctx, input)
		if err != nil {
			// Если контекст отменен -> выходим
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.PollErrors.WithLabelValues(brokerLabel).Inc()
			c.log.Errorf(ctx, "receive failed: %v (will retry in %s)", err, c.retryDelay)
			if !sleepCtx(ctx, c.retryDelay) {
				return ctx.Err()
			}
			continue
		}

		if len(out.Messages) == 0 {
			c.log.Debugf(ctx, "no messages received")
			// short poll возвращается сразу: без паузы цикл крутился бы вхолостую
			if input.WaitTimeSeconds == 0 && !sleepCtx(ctx, c.emptyDelay) {
				return ctx.Err()
			}
			continue
		}
		c.log.Debugf(ctx, "received %d messages", len(out.Messages))

		for i := range out.Messages {
			// Необработанный остаток пачки вернётся в очередь сам
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.handleMessage(ctx, &out.Messages[i])
		}
	}
}

// Close — у клиента SQS нет долгоживущих соединений, закрывать нечего.
func (c *Consumer) Close() error { return nil }
