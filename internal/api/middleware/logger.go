package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger returns a request-logging middleware. Poll requests fire every
// couple of seconds per open chat, so they are logged at debug to keep the
// info stream readable.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}

		if path == "/api/check-ai-response" && c.Writer.Status() < 400 {
			logger.Debug("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
