package app

import (
	"context"
	"fmt"
	"strings"

	"skilltrack/internal/config"
	"skilltrack/internal/delivery/http/handler"
	"skilltrack/internal/delivery/http/middleware"
	"skilltrack/internal/delivery/http/routes"
	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP surface on top of an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container, applies migrations and starts the
// websocket hub. The returned cleanup stops the hub and releases the store.
func Bootstrap(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Migrate(ctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	app := New(c)
	cleanup := func() error {
		stopHub()
		return c.Close()
	}
	return app, cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, log *logger.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(log)
	app.Use(errMw.Middleware())

	accessLog := middleware.NewAccessLogMiddleware(log)
	app.Use(accessLog.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(c.JWT)
	reg := &routes.Registry{
		Health:    handler.NewHealthHandler(c.DB, c.Cache),
		Skill:     handler.NewSkillHandler(c.Skills),
		UserSkill: handler.NewUserSkillHandler(c.UserSkills),
		WS:        ws.NewHandler(c.Hub, c.Logger),
		Auth:      authMw.Middleware(),
		Elevated:  middleware.RequireElevated(c.Authz),
	}
	reg.Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
