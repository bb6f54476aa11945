package middleware

import (
	"time"

	"skilltrack/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AccessLogMiddleware struct {
	logger *logger.Logger
}

func NewAccessLogMiddleware(log *logger.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: log}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)

		err := c.Next()

		// the error handler has not written the response yet
		status := c.Response().StatusCode()
		if err != nil {
			status = normalizeError(err).status
		}

		if m != nil {
			m.logger.Info("http access",
				"rid", rid,
				"ip", c.IP(),
				"method", c.Method(),
				"path", c.OriginalURL(),
				"status", status,
				"latency", time.Since(start).String(),
				"req_bytes", c.Request().Header.ContentLength(),
				"resp_bytes", len(c.Response().Body()),
				"ua", c.Get("User-Agent"),
			)
		}

		return err
	}
}
