package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/drivethru-app/utils"
)

const RequestIDKey = "request_id"

// RequestID tags every request with an id, reusing a sane X-Request-ID from
// the client, and threads it through the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(utils.RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = utils.NewRequestID()
		}
		c.Set(RequestIDKey, id)
		c.Request = c.Request.WithContext(utils.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(utils.RequestIDHeader, id)
		c.Next()
	}
}

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"status":     status,
			"latency":    latency.String(),
			"client_ip":  c.ClientIP(),
			"path":       path,
			"request_id": c.GetString(RequestIDKey),
		})
		if status >= 500 {
			entry.Warn("Request failed")
			return
		}
		entry.Info("Request handled")
	}
}
