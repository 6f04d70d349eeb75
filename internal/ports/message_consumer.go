package ports

import "context"

// MessageConsumer — фоновый цикл чтения из брокера.
// Run блокируется до отмены контекста; Close освобождает соединения.
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
