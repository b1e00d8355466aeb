// Package middleware содержит HTTP middleware калькулятора.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/price-calculator/pkg/logger"
)

// HTTP заголовки трассировки.
const (
	HeaderTraceID       = "X-Trace-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID" // алиас X-Trace-ID
)

// Tracing кладёт trace_id и correlation_id в контекст запроса и в ответ.
// Отсутствующие идентификаторы генерируются. Также пишет access-лог.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = c.GetHeader(HeaderRequestID)
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		correlationID := c.GetHeader(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = traceID
		}

		ctx := logger.NewContextWithIDs(c.Request.Context(), traceID, correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, traceID)
		c.Header(HeaderCorrelationID, correlationID)

		log := logger.FromContext(ctx)

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Запрос обработан")
	}
}
