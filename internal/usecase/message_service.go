package usecase

import (
	"context"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
)

// Проверка, что MessageService удовлетворяет порту HTTP-слоя.
var _ ports.MessageSender = (*MessageService)(nil)

// MessageService — путь продюсера: validate → publish → вернуть идентификатор брокера.
// Состояния не хранит; безопасен для конкурентных запросов.
type MessageService struct {
	publisher ports.Publisher
	log       ports.Logger
	now       func() time.Time
}

// NewMessageService — DI-конструктор.
func NewMessageService(publisher ports.Publisher, log ports.Logger) *MessageService {
	return &MessageService{
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClock — подмена часов (тесты, воспроизводимые отметки времени).
func (s *MessageService) WithClock(now func() time.Time) *MessageService {
	if now != nil {
		s.now = now
	}
	return s
}

// Send — отправить конверт {id, timestamp} через брокер.
// Пустой id → domain.ErrValidation без обращения к брокеру.
// Ошибки публикации возвращаются как есть (ErrConfiguration / ErrBrokerUnavailable); повторов нет.
func (s *MessageService) Send(ctx context.Context, id string) (domain.SendResult, error) {
	if err := (domain.MessageRequest{ID: id}).Validate(); err != nil {
		return domain.SendResult{}, err
	}

	env := domain.NewEnvelope(id, s.now())
	messageID, err := s.publisher.Publish(ctx, env)
	if err != nil {
		s.log.Errorf(ctx, "publish failed id=%s err=%v", id, err)
		return domain.SendResult{}, err
	}

	s.log.Infof(ctx, "message sent id=%s message_id=%s", id, messageID)
	return domain.SendResult{MessageID: messageID, SentID: id}, nil
}
