package handler

import (
	"context"
	"time"

	"skilltrack/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Check)
}

// Check reports the store and cache. A missing cache is not an outage.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	data := map[string]string{"database": "up", "cache": "up"}
	if h.cache == nil || h.cache.Ping(ctx) != nil {
		data["cache"] = "bypassed"
	}
	if h.db == nil || h.db.Ping(ctx) != nil {
		data["database"] = "down"
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
