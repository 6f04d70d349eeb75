package ports

import (
	"context"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
)

// MessageHandler — обработка одной доставки.
// nil или domain.ErrMalformedPayload — сообщение можно подтверждать;
// любая другая ошибка — оставить сообщение брокеру для повторной доставки.
type MessageHandler interface {
	Handle(ctx context.Context, d domain.Delivery) error
}

// Processor — бизнес-логика над разобранным конвертом.
type Processor interface {
	Process(ctx context.Context, env domain.Envelope) error
}

// DeliveryTracker — учёт уже обработанных доставок (по идентификатору брокера),
// чтобы повторная доставка не запускала обработку второй раз.
type DeliveryTracker interface {
	Seen(ctx context.Context, messageID string) bool
	MarkProcessed(ctx context.Context, messageID string)
}
