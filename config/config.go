package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/kelseyhightower/envconfig"
)

// Prefix — префикс переменных окружения (BROKER_DEMO_HTTP_ADDR и т.д.).
const Prefix = "BROKER_DEMO"

// Broker — тип брокера, с которым работает процесс.
type Broker string

const (
	BrokerSQS   Broker = "sqs"
	BrokerKafka Broker = "kafka"
)

// ParseBroker — нормализует строку (регистр, пробелы); неизвестное значение → ErrConfiguration.
func ParseBroker(s string) (Broker, error) {
	switch b := Broker(strings.ToLower(strings.TrimSpace(s))); b {
	case BrokerSQS, BrokerKafka:
		return b, nil
	case "":
		return "", fmt.Errorf("%w: broker is not set (sqs|kafka)", domain.ErrConfiguration)
	default:
		return "", fmt.Errorf("%w: unknown broker %q (sqs|kafka)", domain.ErrConfiguration, s)
	}
}

// DisplayName — имя брокера для ответов API ("SQS", "Kafka").
func (b Broker) DisplayName() string {
	switch b {
	case BrokerSQS:
		return "SQS"
	case BrokerKafka:
		return "Kafka"
	default:
		return string(b)
	}
}

// Role — роль процесса: HTTP-продюсер или фоновый консьюмер.
type Role string

const (
	RoleProducer Role = "producer"
	RoleWorker   Role = "worker"
)

type HTTP struct {
	Addr              string        `default:":8080" envconfig:"ADDR"`
	GinMode           string        `default:"debug" envconfig:"GIN_MODE"`
	ReadTimeout       time.Duration `default:"10s" envconfig:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `default:"10s" envconfig:"WRITE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `default:"5s" envconfig:"READ_HEADER_TIMEOUT"`
	IdleTimeout       time.Duration `default:"60s" envconfig:"IDLE_TIMEOUT"`
	HandlerTimeout    time.Duration `default:"5s" envconfig:"HANDLER_TIMEOUT"`
	GracefulTimeout   time.Duration `default:"10s" envconfig:"GRACEFUL_TIMEOUT"`
}

// Metrics — отдельный listener воркера: /metrics, /health, /ping.
type Metrics struct {
	Addr string `default:":2112" envconfig:"ADDR"`
}

type Tracing struct {
	Enabled     bool    `default:"false" envconfig:"OTEL_ENABLED"`
	ServiceName string  `default:"broker-demo" envconfig:"OTEL_SERVICE_NAME"`
	Endpoint    string  `default:"jaeger:4318" envconfig:"OTEL_ENDPOINT"`
	SampleRatio float64 `default:"1" envconfig:"OTEL_SAMPLE_RATIO"`
}

type Logger struct {
	IsProd bool   `default:"false" envconfig:"IS_PROD"`
	Level  string `default:"info" envconfig:"LEVEL"`
}

type SQS struct {
	QueueURL            string `envconfig:"QUEUE_URL"`
	Region              string `default:"us-east-1" envconfig:"REGION"`
	Endpoint            string `envconfig:"ENDPOINT"` // LocalStack и т.п.; пусто — endpoint AWS
	MaxNumberOfMessages int32  `default:"10" envconfig:"MAX_NUMBER_OF_MESSAGES"`
	WaitTimeSeconds     int32  `default:"20" envconfig:"WAIT_TIME_SECONDS"`
}

type Kafka struct {
	Brokers         []string      `envconfig:"BROKERS"`
	Topic           string        `default:"demo-topic" envconfig:"TOPIC"`
	GroupID         string        `default:"kafka-demo-consumer-group" envconfig:"GROUP_ID"`
	ClientID        string        `default:"kafka-demo-producer" envconfig:"CLIENT_ID"`
	StartOffset     string        `default:"first" envconfig:"START_OFFSET"`
	CommitBatchSize int           `default:"10" envconfig:"COMMIT_BATCH_SIZE"`
	MaxWait         time.Duration `default:"10s" envconfig:"MAX_WAIT"`
}

// Worker — общие параметры цикла консьюмера.
type Worker struct {
	RetryDelay     time.Duration `default:"5s" envconfig:"RETRY_DELAY"`
	ProcessTimeout time.Duration `default:"30s" envconfig:"PROCESS_TIMEOUT"`
	ProcessDelay   time.Duration `default:"100ms" envconfig:"PROCESS_DELAY"`
	AckTimeout     time.Duration `default:"5s" envconfig:"ACK_TIMEOUT"`
}

// Cache — учёт обработанных доставок (защита от повторной обработки при redelivery).
type Cache struct {
	Capacity int           `default:"10000" envconfig:"CAPACITY"`
	TTL      time.Duration `default:"15m" envconfig:"TTL"`
}

type Config struct {
	Broker  string `envconfig:"BROKER"`
	HTTP    HTTP
	Metrics Metrics
	Tracing Tracing
	Logger  Logger
	SQS     SQS
	Kafka   Kafka
	Worker  Worker
	Cache   Cache
}

// Load — конфигурация из окружения с префиксом BROKER_DEMO.
func Load() (Config, error) {
	return LoadWithPrefix(Prefix)
}

// LoadWithPrefix — то же с произвольным префиксом (тесты).
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config

	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate — проверка наличия обязательных настроек для брокера и роли.
// Ошибка оборачивает domain.ErrConfiguration: процесс не должен стартовать.
func (c *Config) Validate(broker Broker, role Role) error {
	var problems []string

	switch broker {
	case BrokerSQS:
		problems = c.validateSQS(role)
	case BrokerKafka:
		problems = c.validateKafka(role)
	default:
		return fmt.Errorf("%w: unknown broker %q", domain.ErrConfiguration, broker)
	}

	if role == RoleWorker {
		if c.Worker.RetryDelay <= 0 {
			problems = append(problems, "worker retry delay must be positive")
		}
		if c.Worker.ProcessTimeout <= 0 {
			problems = append(problems, "worker process timeout must be positive")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateSQS(role Role) []string {
	var problems []string
	if strings.TrimSpace(c.SQS.QueueURL) == "" {
		problems = append(problems, "SQS queue URL is not configured")
	}
	if role == RoleWorker {
		if n := c.SQS.MaxNumberOfMessages; n < 1 || n > 10 {
			problems = append(problems, fmt.Sprintf("SQS max number of messages must be 1..10, got %d", n))
		}
		if w := c.SQS.WaitTimeSeconds; w < 0 || w > 20 {
			problems = append(problems, fmt.Sprintf("SQS wait time seconds must be 0..20, got %d", w))
		}
	}
	return problems
}

func (c *Config) validateKafka(role Role) []string {
	var problems []string
	if len(nonEmpty(c.Kafka.Brokers)) == 0 {
		problems = append(problems, "Kafka bootstrap servers are not configured")
	}
	if strings.TrimSpace(c.Kafka.Topic) == "" {
		problems = append(problems, "Kafka topic is not configured")
	}
	if role == RoleWorker {
		if strings.TrimSpace(c.Kafka.GroupID) == "" {
			problems = append(problems, "Kafka group id is not configured")
		}
		if c.Kafka.CommitBatchSize < 1 {
			problems = append(problems, fmt.Sprintf("Kafka commit batch size must be >= 1, got %d", c.Kafka.CommitBatchSize))
		}
	}
	return problems
}

// nonEmpty — адреса без пустых элементов ("k1:9092,,").
func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// KafkaBrokers — нормализованный список bootstrap-серверов.
func (c *Config) KafkaBrokers() []string {
	return nonEmpty(c.Kafka.Brokers)
}
