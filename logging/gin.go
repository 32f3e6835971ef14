package logging

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinLogger replaces gin.Logger with a structured request log line.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := Info()
		if c.Writer.Status() >= 500 {
			event = Error()
		} else if c.Writer.Status() >= 400 {
			event = Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
