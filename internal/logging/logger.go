package logging

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const RequestIDKey = "request_id"

var root hclog.Logger = hclog.NewNullLogger()

// Init builds the application logger. level is an hclog level name
// ("trace", "debug", "info", "warn", "error"); format "json" switches to JSON output.
func Init(level, format string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	root = hclog.New(&hclog.LoggerOptions{
		Name:       "cinecore",
		Level:      lvl,
		JSONFormat: format == "json",
		Output:     os.Stdout,
	})
	hclog.SetDefault(root)
	return root
}

// L returns a component logger.
func L(name string) hclog.Logger {
	return root.Named(name)
}

// RequestLogger tags every request with an id and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	log := L("http")
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)

		c.Next()

		status := c.Writer.Status()
		args := []interface{}{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		switch {
		case status >= 500:
			log.Error("request failed", append(args, "errors", c.Errors.String())...)
		case status >= 400:
			log.Info("request rejected", args...)
		default:
			log.Debug("request", args...)
		}
	}
}
