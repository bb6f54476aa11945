package seeder_test

import (
	"context"
	"testing"

	"skilltrack/internal/database/seeder"
	"skilltrack/internal/domain/skill"
	"skilltrack/internal/domain/user"
	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/repository"
	"skilltrack/internal/testutil"
	"skilltrack/internal/usecase"
)

func TestDefaults_AreIdempotent(t *testing.T) {
	db := testutil.OpenSQLite(t)
	ctx := context.Background()
	users := repository.NewPostgresUserRepository(db)
	skills := usecase.NewSkillUsecase(repository.NewPostgresSkillRepository(db), nil, nil, logger.Nop())

	var admins []user.User
	opts := seeder.Options{
		AdminEmail: "Admin@Example.test",
		OnAdmin:    func(u user.User) { admins = append(admins, u) },
	}

	for i := 0; i < 2; i++ {
		r := seeder.Runner{Seeders: seeder.Defaults(users, skills, opts), Logger: logger.Nop()}
		if err := r.Run(ctx); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if len(admins) != 2 || admins[0].ID != admins[1].ID {
		t.Fatalf("expected the same admin both runs, got %+v", admins)
	}
	if admins[0].Email != "admin@example.test" || admins[0].Role != "admin" {
		t.Fatalf("unexpected admin: %+v", admins[0])
	}

	nodes, err := skills.ListAllSkills(ctx)
	if err != nil {
		t.Fatalf("ListAllSkills: %v", err)
	}
	if len(nodes) != 16 {
		t.Fatalf("expected 16 taxonomy nodes, got %d", len(nodes))
	}
	if err := skill.NewForest(nodes).Validate(); err != nil {
		t.Fatalf("seeded forest invalid: %v", err)
	}

	roots, err := skills.GetRootSkills(ctx)
	if err != nil {
		t.Fatalf("GetRootSkills: %v", err)
	}
	want := []string{"Programming", "DevOps", "Cloud", "Design"}
	if len(roots) != len(want) {
		t.Fatalf("expected %d roots, got %d", len(want), len(roots))
	}
	for i, name := range want {
		if roots[i].Name != name {
			t.Fatalf("root %d = %s, want %s", i, roots[i].Name, name)
		}
	}
}

func TestDefaults_SkipTaxonomy(t *testing.T) {
	db := testutil.OpenSQLite(t)
	users := repository.NewPostgresUserRepository(db)
	skills := usecase.NewSkillUsecase(repository.NewPostgresSkillRepository(db), nil, nil, logger.Nop())

	got := seeder.Defaults(users, skills, seeder.Options{SkipTaxonomy: true})
	if len(got) != 0 {
		t.Fatalf("expected no seeders without admin email and with taxonomy skipped, got %d", len(got))
	}
}
