//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
)

// ----------------------------------------------------------------------------
// Логи жизненного цикла контейнеров
// ----------------------------------------------------------------------------

func shortID(c tc.Container) string {
	id := c.GetContainerID()
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func logHooks(l *log.Logger) tc.ContainerLifecycleHooks {
	return tc.ContainerLifecycleHooks{
		PreCreates: []tc.ContainerRequestHook{
			func(_ context.Context, req tc.ContainerRequest) error {
				l.Printf("🐳 creating container image=%s", req.Image)
				return nil
			},
		},
		PostCreates: []tc.ContainerHook{
			func(ctx context.Context, c tc.Container) error {
				n, _ := c.Name(ctx)
				l.Printf("✅ created id=%s name=%s", shortID(c), n)
				return nil
			},
		},
		PreStarts: []tc.ContainerHook{
			func(_ context.Context, c tc.Container) error {
				l.Printf("🐳 starting id=%s", shortID(c))
				return nil
			},
		},
		PostStarts: []tc.ContainerHook{
			func(_ context.Context, c tc.Container) error {
				l.Printf("✅ started id=%s", shortID(c))
				return nil
			},
		},
		PostReadies: []tc.ContainerHook{
			func(_ context.Context, c tc.Container) error {
				l.Printf("🔔 ready id=%s", shortID(c))
				return nil
			},
		},
		PreTerminates: []tc.ContainerHook{
			func(_ context.Context, c tc.Container) error {
				l.Printf("🛑 terminating id=%s", shortID(c))
				return nil
			},
		},
		PostTerminates: []tc.ContainerHook{
			func(_ context.Context, c tc.Container) error {
				l.Printf("🚫 terminated id=%s", shortID(c))
				return nil
			},
		},
	}
}

// Общий логгер для testcontainers
var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

// ----------------------------------------------------------------------------
// SQS (LocalStack)
// ----------------------------------------------------------------------------

// SQSEnv — LocalStack с включённым SQS. Endpoint вида "http://host:port".
type SQSEnv struct {
	Container *localstack.LocalStackContainer
	Endpoint  string
	Region    string
}

// StartSQSTC — поднимает LocalStack. Учётные данные LocalStack не проверяет,
// но клиенту AWS они нужны: тест выставляет AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY сам.
func StartSQSTC(ctx context.Context) (*SQSEnv, func(context.Context) error, error) {
	ls, err := localstack.Run(
		ctx,
		"localstack/localstack:3.8",
		tc.WithLifecycleHooks(logHooks(tcLogger)),
		tc.WithEnv(map[string]string{"SERVICES": "sqs"}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run localstack: %w", err)
	}

	endpoint, err := ls.PortEndpoint(ctx, "4566/tcp", "http")
	if err != nil {
		_ = tc.TerminateContainer(ls)
		return nil, nil, fmt.Errorf("localstack endpoint: %w", err)
	}

	env := &SQSEnv{
		Container: ls,
		Endpoint:  endpoint,
		Region:    "us-east-1",
	}
	stop := func(_ context.Context) error { return tc.TerminateContainer(ls) }
	return env, stop, nil
}

// CreateQueue — создаёт очередь (повторное создание с теми же атрибутами — не ошибка)
// и возвращает её URL. Короткий visibility timeout ускоряет проверки повторной доставки.
func CreateQueue(ctx context.Context, client *sqs.Client, name string, visibility time.Duration) (string, error) {
	out, err := client.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(name),
		Attributes: map[string]string{
			"VisibilityTimeout": strconv.Itoa(int(visibility / time.Second)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create queue %q: %w", name, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// ----------------------------------------------------------------------------
// Kafka
// ----------------------------------------------------------------------------

// KafkaEnv — Redpanda (Kafka API). BaseTopic — префикс для уникальных топиков теста.
type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string
}

func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(
		ctx,
		"docker.redpanda.com/redpandadata/redpanda:v23.3.8",
		tc.WithLifecycleHooks(logHooks(tcLogger)),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx) // вернёт "host:port" для клиента
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	env := &KafkaEnv{
		Container: rp,
		Brokers:   []string{seed},
		BaseTopic: baseTopic,
	}
	stop := func(_ context.Context) error { return tc.TerminateContainer(rp) }
	return env, stop, nil
}
