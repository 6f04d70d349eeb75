package rest

import (
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter — HTTP API продюсера.
// otelServiceName пустой — без otelgin (трейсинг выключен).
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := newEngine(h.log, otelServiceName)

	r.GET("/health", h.health)
	r.POST("/api/message", h.postMessage)

	return r
}

// NewProbeRouter — служебный HTTP воркера: только /health, /ping, /metrics.
func NewProbeRouter(log ports.Logger) *gin.Engine {
	r := newEngine(log, "")
	r.GET("/health", healthHandler(time.Now))
	return r
}

func newEngine(log ports.Logger, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(log))

	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
