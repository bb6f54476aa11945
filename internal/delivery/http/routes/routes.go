package routes

import (
	"skilltrack/internal/delivery/http/handler"
	"skilltrack/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry holds every handler the HTTP surface exposes.
type Registry struct {
	Health    *handler.HealthHandler
	Skill     *handler.SkillHandler
	UserSkill *handler.UserSkillHandler
	WS        *ws.Handler

	Auth     fiber.Handler
	Elevated fiber.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil || r == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r)
}
