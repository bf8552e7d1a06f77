package obs

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog logs every request once it completes and records its metrics.
// The route label is the registered pattern, never the raw path.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		ObserveHTTP(c.Request.Method, c.FullPath(), strconv.Itoa(status), elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		l := WithTrace(c.Request.Context(), log)
		switch {
		case status >= 500:
			l.Error("http request", fields...)
		case status >= 400:
			l.Warn("http request", fields...)
		default:
			l.Info("http request", fields...)
		}
	}
}
