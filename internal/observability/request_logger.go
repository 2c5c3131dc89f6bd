package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// UnmatchedRoute is the metrics label shared by every request that hit no route.
const UnmatchedRoute = "unmatched"

// RouteLabel returns the registered route pattern for metrics keys, so
// arbitrary request paths cannot grow the counter maps.
func RouteLabel(c *fiber.Ctx, status int) string {
	if status == fiber.StatusNotFound {
		return UnmatchedRoute
	}
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return UnmatchedRoute
}

// RequestLogger logs one line per request and records request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		duration := time.Since(start)
		metrics.RecordRequest(RouteLabel(c, status), c.Method(), status, duration)

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", duration),
			zap.String("ip", c.IP()))
		return err
	}
}
