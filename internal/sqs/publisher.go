package sqs

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/Gunvolt24/brokerdemo/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.opentelemetry.io/otel/codes"
)

const brokerLabel = "sqs"

var _ ports.Publisher = (*Publisher)(nil)

// Publisher — отправка конвертов в очередь SQS. Повторов нет: ошибка уходит вызывающему.
type Publisher struct {
	client   API
	queueURL string
	log      ports.Logger
}

func NewPublisher(client API, queueURL string, log ports.Logger) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: strings.TrimSpace(queueURL),
		log:      log,
	}
}

// Publish — SendMessage{QueueUrl, MessageBody}; возвращает MessageId от SQS.
// Контекст трассировки уходит в атрибутах сообщения.
func (p *Publisher) Publish(ctx context.Context, env domain.Envelope) (_ string, err error) {
	if p.queueURL == "" {
		metrics.MessagesPublishFailed.WithLabelValues(brokerLabel).Inc()
		return "", fmt.Errorf("%w: SQS queue URL is not configured", domain.ErrConfiguration)
	}

	ctx, span := telemetry.StartProducerSpan(ctx, brokerLabel, p.queueURL)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := env.Marshal()
	if err != nil {
		metrics.MessagesPublishFailed.WithLabelValues(brokerLabel).Inc()
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: toMessageAttributes(telemetry.InjectHeaders(ctx)),
	})
	if err != nil {
		metrics.MessagesPublishFailed.WithLabelValues(brokerLabel).Inc()
		return "", fmt.Errorf("%w: send message: %w", domain.ErrBrokerUnavailable, err)
	}

	metrics.MessagesPublished.WithLabelValues(brokerLabel).Inc()
	messageID := aws.ToString(out.MessageId)
	p.log.Debugf(ctx, "sqs message sent id=%s message_id=%s", env.ID, messageID)
	return messageID, nil
}

// Close — клиент SQS держит только HTTP-пул; закрывать нечего.
func (p *Publisher) Close() error { return nil }

// toMessageAttributes — заголовки трассировки как строковые атрибуты SQS.
func toMessageAttributes(headers map[string]string) map[string]types.MessageAttributeValue {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]types.MessageAttributeValue, len(headers))
	for k, v := range headers {
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	return attrs
}

// fromMessageAttributes — обратное преобразование (только строковые атрибуты).
func fromMessageAttributes(attrs map[string]types.MessageAttributeValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	headers := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if v.StringValue != nil {
			headers[k] = *v.StringValue
		}
	}
	return headers
}
