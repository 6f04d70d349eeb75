package httpx

import (
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/Gunvolt24/brokerdemo/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
)

// RequestLogger — middleware для логирования HTTP-запросов.
// 5xx пишутся как ошибки, 4xx — как предупреждения.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// пробы и метрики не логируем
		switch c.FullPath() {
		case "/metrics", "/ping", "/health":
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		sp, _ := ctxmeta.SpanIDFromContext(ctx)
		status := c.Writer.Status()

		logf := log.Infof
		switch {
		case status >= 500:
			logf = log.Errorf
		case status >= 400:
			logf = log.Warnf
		}

		logf(
			ctx,
			"request span=%s method=%s path=%s status=%d ip=%s duration=%s size=%d",
			sp,
			c.Request.Method,
			path,
			status,
			c.ClientIP(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
