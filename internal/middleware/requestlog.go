package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
)

type RequestLogMiddleware struct {
	log *logger.Logger
}

func NewRequestLogMiddleware(log *logger.Logger) *RequestLogMiddleware {
	return &RequestLogMiddleware{log: log.With("middleware", "RequestLog")}
}

// Handler logs one structured line per request. Client errors log at debug so
// editor polling noise stays out of production logs.
func (m *RequestLogMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= 500:
			m.log.Error("request failed", fields...)
		case status >= 400:
			m.log.Debug("request rejected", fields...)
		default:
			m.log.Info("request", fields...)
		}
	}
}
