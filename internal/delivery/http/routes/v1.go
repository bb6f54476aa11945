package routes

import (
	v1 "skilltrack/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, reg *Registry) {
	if r == nil {
		return
	}

	v1.Register(r, v1.Handlers{
		Skill:     reg.Skill,
		UserSkill: reg.UserSkill,
		WS:        reg.WS,
		Auth:      reg.Auth,
		Elevated:  reg.Elevated,
	})
}
