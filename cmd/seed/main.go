package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"skilltrack/internal/app"
	"skilltrack/internal/config"
	"skilltrack/internal/database/seeder"
	"skilltrack/internal/domain/user"
	"skilltrack/internal/pkg/logger"
)

func main() {
	adminEmail := flag.String("admin-email", "", "create or reuse an elevated account with this email")
	adminRole := flag.String("admin-role", "admin", "role given to a newly created admin account")
	skipTaxonomy := flag.Bool("skip-taxonomy", false, "do not load the starter skill taxonomy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to init container", "error", err)
	}
	defer func() {
		_ = c.Close()
	}()

	if err := c.Migrate(ctx); err != nil {
		zl.Fatal("migration failed", "error", err)
	}

	var admin *user.User
	r := seeder.Runner{
		Logger: zl,
		Seeders: seeder.Defaults(c.Users, c.Skills, seeder.Options{
			AdminEmail:   *adminEmail,
			AdminRole:    *adminRole,
			SkipTaxonomy: *skipTaxonomy,
			OnAdmin:      func(u user.User) { admin = &u },
		}),
	}
	if err := r.Run(ctx); err != nil {
		zl.Fatal("seeding failed", "error", err)
	}

	if admin == nil {
		return
	}
	token, err := c.JWT.GenerateAccessToken(admin.ID, admin.Role)
	if err != nil {
		zl.Fatal("failed to issue admin token", "error", err)
	}
	fmt.Printf("admin_id=%s\naccess_token=%s\n", admin.ID, token)
}
