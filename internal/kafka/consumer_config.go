package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig — параметры чтения топика в составе consumer group.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first|last; по умолчанию first
	MaxWait     time.Duration

	CommitBatchSize int
	RetryDelay      time.Duration
}

// ReaderConfig — конфигурация kafka.Reader с ручным коммитом оффсетов.
// StartOffset применяется только для группы без сохранённых оффсетов.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		MaxWait:        c.MaxWait,
		CommitInterval: 0,
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "last", "latest":
		rc.StartOffset = kafka.LastOffset
	default:
		rc.StartOffset = kafka.FirstOffset
	}

	return rc
}
