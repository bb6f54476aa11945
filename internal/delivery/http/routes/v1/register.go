package v1

import (
	"skilltrack/internal/delivery/http/handler"
	"skilltrack/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Skill     *handler.SkillHandler
	UserSkill *handler.UserSkillHandler
	WS        *ws.Handler

	Auth     fiber.Handler
	Elevated fiber.Handler
}

// Register mounts every v1 route behind the auth middleware.
func Register(r fiber.Router, h Handlers) {
	if r == nil || h.Auth == nil {
		return
	}

	protected := r.Group("", h.Auth)

	RegisterSkills(protected, h.Skill, h.Elevated)
	RegisterUsers(protected, h.UserSkill)
	if h.WS != nil {
		protected.Get("/ws/skills", h.WS.HandleSkillsWS)
	}
}
