package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skilltrack/internal/config"
	"skilltrack/internal/database"
	"skilltrack/internal/database/migration"
	dbpostgres "skilltrack/internal/database/postgres"
	"skilltrack/internal/database/sqlite"
	"skilltrack/internal/delivery/http/middleware"
	"skilltrack/internal/infrastructure/cache"
	"skilltrack/internal/pkg/jwt"
	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/repository"
	"skilltrack/internal/usecase"
	"skilltrack/internal/ws"
)

// Container owns every long-lived dependency of the service.
type Container struct {
	Config config.Config
	Logger *logger.Logger

	DB     database.DB
	sqlite *sqlite.DB

	Cache *cache.Redis
	Hub   *ws.Hub
	JWT   *jwt.HMACService
	Authz *middleware.RoleAuthorizer

	Users      *repository.PostgresUserRepository
	Skills     *usecase.Skill
	UserSkills *usecase.UserSkill
}

func NewContainer(ctx context.Context, cfg config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(connectCtx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.DB, c.sqlite = db, db
	case config.DriverPostgres:
		db, err := dbpostgres.Connect(connectCtx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		c.DB = db
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	log.Info("database connected", "driver", cfg.Database.Driver)

	c.Cache = cache.NewRedis(ctx, cfg.Redis, strings.ToLower(cfg.App.AppName), log)
	c.Hub = ws.NewHub(log)
	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)
	c.Authz = middleware.NewRoleAuthorizer(cfg.Authz.ElevatedRoles)

	notifier := ws.NewNotifier(c.Hub)
	c.Users = repository.NewPostgresUserRepository(c.DB)
	c.Skills = usecase.NewSkillUsecase(repository.NewPostgresSkillRepository(c.DB), c.Cache, notifier, log).
		WithCacheTTL(cfg.Redis.TTL)
	c.UserSkills = usecase.NewUserSkillUsecase(
		repository.NewPostgresUserSkillRepository(c.DB),
		c.Skills,
		c.Authz,
		notifier,
		log,
	)

	return c, nil
}

// Migrate brings the schema up to date for the configured driver.
func (c *Container) Migrate(ctx context.Context) error {
	if c.sqlite != nil {
		return c.sqlite.ApplySchema(ctx)
	}
	r := migration.Runner{FS: migration.Embedded(), Logger: c.Logger}
	return r.Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
