package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Продюсер: метка broker = sqs|kafka.
var (
	MessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_published_total",
			Help: "Number of messages accepted by the broker",
		},
		[]string{"broker"},
	)
	MessagesPublishFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_publish_failed_total",
			Help: "Number of publish attempts rejected by the broker or misconfigured",
		},
		[]string{"broker"},
	)
)

// Консьюмер: метки broker и source (URL очереди или топик).
var (
	MessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_consumed_total",
			Help: "Number of messages received from the broker",
		},
		[]string{"broker", "source"},
	)
	MessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"broker", "source"},
	)
	MessagesMalformed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_malformed_total",
			Help: "Number of messages dropped because the payload could not be parsed",
		},
		[]string{"broker", "source"},
	)
	MessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_failed_total",
			Help: "Number of messages left for redelivery after a processing error",
		},
		[]string{"broker", "source"},
	)
	MessagesAcked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_messages_acked_total",
			Help: "Number of messages acknowledged (SQS delete, Kafka commit)",
		},
		[]string{"broker", "source"},
	)
	PollErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_poll_errors_total",
			Help: "Number of failed receive/fetch calls",
		},
		[]string{"broker"},
	)
	AckErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_ack_errors_total",
			Help: "Number of failed delete/commit calls",
		},
		[]string{"broker"},
	)
	KafkaCommitBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_commit_batches_total",
			Help: "Number of batched offset commits",
		},
		[]string{"topic"},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_cache_operations_total",
			Help: "Delivery tracker cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "delivery_cache_size",
			Help: "Number of delivery ids currently tracked",
		},
	)
)

var registerOnce sync.Once

// MustRegister — регистрация в глобальном реестре; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			MessagesPublished, MessagesPublishFailed,
			MessagesConsumed, MessagesProcessed, MessagesMalformed, MessagesFailed, MessagesAcked,
			PollErrors, AckErrors, KafkaCommitBatches,
			CacheOps, CacheSize,
		)
	})
}
