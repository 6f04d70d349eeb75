package ports

import "context"

// Logger — логгер продюсера и воркеров.
// Из ctx реализация добавляет request_id (HTTP), message_id (доставка брокера)
// и trace_id, поэтому сообщения формата не дублируют эти поля.
type Logger interface {
	// Debugf — тела сообщений и пустые опросы очереди.
	Debugf(ctx context.Context, format string, args ...any)
	Infof(ctx context.Context, format string, args ...any)
	// Warnf — битые сообщения и неудачные подтверждения, которые не останавливают цикл.
	Warnf(ctx context.Context, format string, args ...any)
	Errorf(ctx context.Context, format string, args ...any)
}
