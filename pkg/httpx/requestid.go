package httpx

import (
	"strings"

	"github.com/Gunvolt24/brokerdemo/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID — заголовок корреляции запроса к API продюсера.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen — длиннее клиентский id не принимаем: он попадает в каждую строку лога публикации.
const maxRequestIDLen = 128

// RequestIDMiddleware связывает HTTP-запрос и публикацию сообщения одним request_id.
// Клиентский X-Request-ID берётся, если он пригоден для логов; иначе генерируется UUID.
// Значение кладётся в контекст (логгер пишет его в каждую строку) и возвращается в ответе.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, ok := sanitizeRequestID(c.GetHeader(HeaderRequestID))
		if !ok {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		c.Request = c.Request.WithContext(ctxmeta.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// sanitizeRequestID — печатный ASCII без пробелов, не длиннее maxRequestIDLen.
func sanitizeRequestID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLen {
		return "", false
	}
	for i := 0; i < len(id); i++ {
		if b := id[i]; b <= ' ' || b > '~' {
			return "", false
		}
	}
	return id, true
}
