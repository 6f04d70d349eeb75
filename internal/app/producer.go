package app

import (
	"context"

	"github.com/Gunvolt24/brokerdemo/config"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	rest "github.com/Gunvolt24/brokerdemo/internal/transport/http"
	"github.com/Gunvolt24/brokerdemo/internal/usecase"
)

// BootstrapProducer — HTTP-продюсер: POST /api/message → брокер.
// Ошибка конфигурации возвращается до создания каких-либо клиентов.
func BootstrapProducer(ctx context.Context, cfg *config.Config, broker config.Broker) (*App, Cleanup, error) {
	if err := cfg.Validate(broker, config.RoleProducer); err != nil {
		return nil, noCleanup, err
	}

	b, err := setupBase(ctx, cfg, config.RoleProducer)
	if err != nil {
		return nil, noCleanup, err
	}

	publisher, err := NewPublisher(ctx, cfg, broker, b.log)
	if err != nil {
		b.cleanup()
		return nil, noCleanup, err
	}

	service := usecase.NewMessageService(publisher, b.log)

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(service, b.log, broker.DisplayName(), cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, b.otelServiceName)

	app := &App{
		Logger:          b.log,
		HTTPServer:      newHTTPServer(cfg, cfg.HTTP.Addr, router),
		Publisher:       publisher,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			b.log.Warnf(ctx, "publisher close error: %v", err)
		}
		b.cleanup()
	}

	b.log.Infof(ctx, "producer configured broker=%s", broker)
	return app, cleanup, nil
}

// BootstrapSender — только публикатор и сервис отправки (разовая отправка из CLI).
func BootstrapSender(ctx context.Context, cfg *config.Config, broker config.Broker) (ports.MessageSender, ports.Logger, Cleanup, error) {
	if err := cfg.Validate(broker, config.RoleProducer); err != nil {
		return nil, nil, noCleanup, err
	}

	b, err := setupBase(ctx, cfg, config.RoleProducer)
	if err != nil {
		return nil, nil, noCleanup, err
	}

	publisher, err := NewPublisher(ctx, cfg, broker, b.log)
	if err != nil {
		b.cleanup()
		return nil, nil, noCleanup, err
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			b.log.Warnf(ctx, "publisher close error: %v", err)
		}
		b.cleanup()
	}
	return usecase.NewMessageService(publisher, b.log), b.log, cleanup, nil
}
