package v1

import (
	"skilltrack/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterUsers(r fiber.Router, userSkillHandler *handler.UserSkillHandler) {
	if r == nil {
		return
	}
	if userSkillHandler == nil {
		return
	}

	userSkillHandler.RegisterRoutes(r)
}
