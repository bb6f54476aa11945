package v1

import (
	"skilltrack/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterSkills(r fiber.Router, skillHandler *handler.SkillHandler, elevated fiber.Handler) {
	if r == nil {
		return
	}
	if skillHandler == nil || elevated == nil {
		return
	}

	skillHandler.RegisterRoutes(r, elevated)
}
