package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/brokerdemo/config"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/logger"
	"github.com/Gunvolt24/brokerdemo/pkg/metrics"
	"github.com/Gunvolt24/brokerdemo/pkg/telemetry"
	"github.com/gin-gonic/gin"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer, publisher).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP API продюсера или служебный listener воркера
	Consumer        ports.MessageConsumer // консьюмер (только воркер)
	Publisher       ports.Publisher       // публикатор (только продюсер)
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

func noCleanup() {}

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// base — общая часть продюсера и воркера: логгер, метрики, трейсинг.
type base struct {
	log             *logger.ZapLogger
	otelServiceName string // пусто — трейсинг выключен
	cleanup         Cleanup
}

func setupBase(ctx context.Context, cfg *config.Config, role config.Role) (*base, error) {
	// Логгер (dev/prod режим и уровень задаются конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd, cfg.Logger.Level)
	if err != nil {
		return nil, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, telemetry.Config{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			Role:        string(role),
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
			otelServiceName = cfg.Tracing.ServiceName
		}
	}

	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	return &base{
		log:             logg,
		otelServiceName: otelServiceName,
		cleanup: func() {
			if terr := shutdownTrace(context.Background()); terr != nil {
				logg.Warnf(ctx, "shutdown tracing: %v", terr)
			}
			if cerr := cleanupLogger(); cerr != nil {
				logg.Warnf(ctx, "cleanup logger: %v", cerr)
			}
		},
	}, nil
}

func newHTTPServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
}

// Run — запускает HTTP-сервер и консьюмера (если есть); ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Запуск консьюмера. consumerDone закрывается, когда Run вернулся.
	var consumerDone chan struct{}
	if a.Consumer != nil {
		consumerDone = make(chan struct{})
		go func() {
			defer close(consumerDone)
			a.Logger.Infof(ctx, "consumer starting")
			if err := a.Consumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Errorf(ctx, "background error: %v", err)
			runErr = err
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	if a.Consumer != nil {
		// Draining: ждём, пока консьюмер закончит текущее подтверждение, и только потом закрываем соединение
		a.waitConsumer(ctx, consumerDone, gt)
		if err := a.Consumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "consumer close error: %v", err)
		}
	}

	// Отправка остатка буфера продюсера.
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warnf(ctx, "publisher close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}

// waitConsumer ждёт выхода Consumer.Run не дольше timeout.
func (a *App) waitConsumer(ctx context.Context, done <-chan struct{}, timeout time.Duration) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		a.Logger.Infof(ctx, "consumer drained")
	case <-t.C:
		a.Logger.Warnf(ctx, "consumer did not stop within %s, closing anyway", timeout)
	}
}
