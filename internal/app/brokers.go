package app

import (
	"context"

	"github.com/Gunvolt24/brokerdemo/config"
	"github.com/Gunvolt24/brokerdemo/internal/kafka"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/internal/sqs"
)

// NewPublisher — публикатор выбранного брокера.
func NewPublisher(ctx context.Context, cfg *config.Config, broker config.Broker, log ports.Logger) (ports.Publisher, error) {
	switch broker {
	case config.BrokerSQS:
		client, err := sqs.NewClient(ctx, sqs.ClientConfig{Region: cfg.SQS.Region, Endpoint: cfg.SQS.Endpoint})
		if err != nil {
			return nil, err
		}
		return sqs.NewPublisher(client, cfg.SQS.QueueURL, log), nil
	default:
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:  cfg.KafkaBrokers(),
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
		}, log)
		if err != nil {
			return nil, err
		}
		return pub, nil
	}
}

// newConsumer — консьюмер выбранного брокера поверх общего обработчика доставок.
func newConsumer(ctx context.Context, cfg *config.Config, broker config.Broker, handler ports.MessageHandler, log ports.Logger) (ports.MessageConsumer, error) {
	switch broker {
	case config.BrokerSQS:
		client, err := sqs.NewClient(ctx, sqs.ClientConfig{Region: cfg.SQS.Region, Endpoint: cfg.SQS.Endpoint})
		if err != nil {
			return nil, err
		}
		return sqs.NewConsumer(client, sqs.ConsumerConfig{
			QueueURL:            cfg.SQS.QueueURL,
			MaxNumberOfMessages: cfg.SQS.MaxNumberOfMessages,
			WaitTimeSeconds:     cfg.SQS.WaitTimeSeconds,
			RetryDelay:          cfg.Worker.RetryDelay,
			AckTimeout:          cfg.Worker.AckTimeout,
		}, handler, log), nil
	default:
		return kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:         cfg.KafkaBrokers(),
			Topic:           cfg.Kafka.Topic,
			GroupID:         cfg.Kafka.GroupID,
			StartOffset:     cfg.Kafka.StartOffset,
			MaxWait:         cfg.Kafka.MaxWait,
			CommitBatchSize: cfg.Kafka.CommitBatchSize,
			RetryDelay:      cfg.Worker.RetryDelay,
		}, handler, log), nil
	}
}
