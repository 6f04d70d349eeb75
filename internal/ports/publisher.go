package ports

import (
	"context"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
)

// Publisher — адаптер брокера: отправка конверта, возврат идентификатора брокера.
// Реализация должна быть безопасна для конкурентного использования.
type Publisher interface {
	Publish(ctx context.Context, env domain.Envelope) (string, error)
	Close() error
}

// MessageSender — прикладной сервис отправки (валидация + публикация).
type MessageSender interface {
	Send(ctx context.Context, id string) (domain.SendResult, error)
}
