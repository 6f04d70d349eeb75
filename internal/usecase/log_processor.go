package usecase

import (
	"context"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
)

var _ ports.Processor = (*LogProcessor)(nil)

// LogProcessor — заглушка бизнес-логики: имитирует работу задержкой и пишет в лог.
type LogProcessor struct {
	log   ports.Logger
	delay time.Duration
}

func NewLogProcessor(log ports.Logger, delay time.Duration) *LogProcessor {
	return &LogProcessor{log: log, delay: delay}
}

// Process — ждёт delay (с учётом отмены контекста) и логирует id.
func (p *LogProcessor) Process(ctx context.Context, env domain.Envelope) error {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	p.log.Infof(ctx, "business logic processed id=%s", env.ID)
	return nil
}
