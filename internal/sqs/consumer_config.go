package sqs

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Пределы SQS для ReceiveMessage.
const (
	maxBatchSize   = 10
	maxWaitSeconds = 20
)

type ConsumerConfig struct {
	QueueURL            string
	MaxNumberOfMessages int32
	WaitTimeSeconds     int32
	RetryDelay          time.Duration
	AckTimeout          time.Duration
	// EmptyPollDelay — пауза после пустого ответа при WaitTimeSeconds=0 (short poll).
	EmptyPollDelay time.Duration
}

// ReceiveInput — параметры long poll; значения вне допустимых пределов SQS приводятся к ним.
func (c *ConsumerConfig) ReceiveInput() *sqs.ReceiveMessageInput {
	return &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(c.QueueURL),
		MaxNumberOfMessages:         clampInt32(c.MaxNumberOfMessages, 1, maxBatchSize),
		WaitTimeSeconds:             clampInt32(c.WaitTimeSeconds, 0, maxWaitSeconds),
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameAll},
		MessageAttributeNames:       []string{"All"},
	}
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
