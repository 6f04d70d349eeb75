package app

import (
	"context"

	"github.com/Gunvolt24/brokerdemo/config"
	cachemem "github.com/Gunvolt24/brokerdemo/internal/cache/memory"
	rest "github.com/Gunvolt24/brokerdemo/internal/transport/http"
	"github.com/Gunvolt24/brokerdemo/internal/usecase"
)

// BootstrapWorker — фоновый консьюмер и служебный HTTP (/health, /metrics).
func BootstrapWorker(ctx context.Context, cfg *config.Config, broker config.Broker) (*App, Cleanup, error) {
	if err := cfg.Validate(broker, config.RoleWorker); err != nil {
		return nil, noCleanup, err
	}

	b, err := setupBase(ctx, cfg, config.RoleWorker)
	if err != nil {
		return nil, noCleanup, err
	}

	// Сборка зависимостей доменного слоя.
	tracker := cachemem.NewDeliveryCache(cfg.Cache.Capacity, cfg.Cache.TTL)
	processor := usecase.NewLogProcessor(b.log, cfg.Worker.ProcessDelay)
	handler := usecase.NewDeliveryHandler(processor, tracker, b.log, string(broker), cfg.Worker.ProcessTimeout)

	consumer, err := newConsumer(ctx, cfg, broker, handler, b.log)
	if err != nil {
		b.cleanup()
		return nil, noCleanup, err
	}

	app := &App{
		Logger:          b.log,
		HTTPServer:      newHTTPServer(cfg, cfg.Metrics.Addr, rest.NewProbeRouter(b.log)),
		Consumer:        consumer,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if err := consumer.Close(); err != nil {
			b.log.Warnf(ctx, "consumer close error: %v", err)
		}
		b.cleanup()
	}

	b.log.Infof(ctx, "worker configured broker=%s", broker)
	return app, cleanup, nil
}
