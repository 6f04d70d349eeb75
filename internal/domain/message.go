package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// MessageRequest — тело POST /api/message.
type MessageRequest struct {
	ID string `json:"id"`
}

// Validate — id обязателен и не может состоять только из пробелов.
func (r MessageRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	return nil
}

// Envelope — единица трафика через брокер (одинакова для SQS и Kafka).
// Timestamp — момент публикации, всегда в UTC.
type Envelope struct {
	ID        string    `json:"Id"`
	Timestamp time.Time `json:"Timestamp"`
}

// NewEnvelope — конверт для id с отметкой времени публикации.
func NewEnvelope(id string, now time.Time) Envelope {
	return Envelope{ID: id, Timestamp: now.UTC()}
}

// Marshal — JSON-представление конверта для брокера.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope — разбор тела сообщения.
// Любая проблема (не JSON, не объект, пустой Id, мусор после объекта)
// возвращается как ErrMalformedPayload с обёрнутой причиной.
// Неизвестные поля допускаются.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	// После объекта не должно быть лишних данных.
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return Envelope{}, fmt.Errorf("%w: trailing data", ErrMalformedPayload)
	}

	if env.ID == "" {
		return Envelope{}, fmt.Errorf("%w: Id is missing", ErrMalformedPayload)
	}
	return env, nil
}

// SendResult — ответ продюсера: идентификатор от брокера и исходный id.
type SendResult struct {
	MessageID string
	SentID    string
}

// Delivery — одно полученное из брокера сообщение.
// MessageID — идентификатор брокера (SQS MessageId, "topic-partition-offset" для Kafka),
// одинаков при повторной доставке. Токен подтверждения (receipt handle, оффсет)
// остаётся внутри адаптера брокера.
type Delivery struct {
	MessageID  string
	Source     string // URL очереди или топик
	Body       []byte
	Headers    map[string]string // заголовки/атрибуты (в т.ч. контекст трассировки)
	ReceivedAt time.Time
}
