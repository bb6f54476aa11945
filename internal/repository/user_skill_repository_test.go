package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"skilltrack/internal/domain/skill"
	"skilltrack/internal/domain/user"
	"skilltrack/internal/repository"
	"skilltrack/internal/testutil"

	"github.com/google/uuid"
)

func TestUserSkillRepository_EntryWithHistory(t *testing.T) {
	db := testutil.OpenSQLite(t)
	ctx := context.Background()
	skills := repository.NewPostgresSkillRepository(db)
	repo := repository.NewPostgresUserSkillRepository(db)

	golang := insertNode(t, skills, "Go", nil)
	u := testutil.CreateUser(t, db, "member")
	now := time.Now().UTC().Truncate(time.Millisecond)

	entry := skill.UserSkillEntry{ID: uuid.New(), UserID: u.ID, SkillID: golang.ID, CreatedAt: now}
	entry.History = []skill.LevelChange{entry.NextChange(skill.LevelBeginner, now, u.ID)}

	err := repo.InTx(ctx, func(w repository.UserSkillWriter) error {
		v, err := w.SkillsVersion(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := w.AdvanceSkillsVersion(ctx, u.ID, v); err != nil {
			return err
		}
		if err := w.Create(ctx, entry); err != nil {
			return err
		}
		return w.AppendHistory(ctx, entry.ID, skill.LevelChange{Seq: 2, Level: skill.LevelExpert, ChangedAt: now, ChangedBy: u.ID})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	got, err := repo.FindByUserAndSkill(ctx, u.ID, golang.ID)
	if err != nil {
		t.Fatalf("FindByUserAndSkill: %v", err)
	}
	if got.SkillName != "Go" || len(got.History) != 2 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !got.History[0].ChangedAt.Equal(now) || got.History[1].Level != skill.LevelExpert {
		t.Fatalf("unexpected history: %+v", got.History)
	}

	// the same seq cannot be written twice
	err = repo.InTx(ctx, func(w repository.UserSkillWriter) error {
		return w.AppendHistory(ctx, entry.ID, skill.LevelChange{Seq: 2, Level: skill.LevelAdvanced, ChangedAt: now, ChangedBy: u.ID})
	})
	if !errors.Is(err, repository.ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}

	users := repository.NewPostgresUserRepository(db)
	reloaded, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.SkillsVersion != 1 {
		t.Fatalf("expected skills_version 1, got %d", reloaded.SkillsVersion)
	}
}

func TestUserSkillRepository_MissingUserAndEntry(t *testing.T) {
	db := testutil.OpenSQLite(t)
	ctx := context.Background()
	repo := repository.NewPostgresUserSkillRepository(db)

	err := repo.InTx(ctx, func(w repository.UserSkillWriter) error {
		_, err := w.SkillsVersion(ctx, uuid.New())
		return err
	})
	if !errors.Is(err, repository.ErrLedgerUserMissing) {
		t.Fatalf("expected ErrLedgerUserMissing, got %v", err)
	}

	err = repo.InTx(ctx, func(w repository.UserSkillWriter) error {
		return w.AppendHistory(ctx, uuid.New(), skill.LevelChange{Seq: 2, Level: skill.LevelExpert, ChangedAt: time.Now().UTC(), ChangedBy: uuid.New()})
	})
	if !errors.Is(err, repository.ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion appending to a vanished entry, got %v", err)
	}

	if _, err := repo.FindByUserAndSkill(ctx, uuid.New(), uuid.New()); !errors.Is(err, repository.ErrUserSkillNotFound) {
		t.Fatalf("expected ErrUserSkillNotFound, got %v", err)
	}

	users := repository.NewPostgresUserRepository(db)
	if _, err := users.GetByEmail(ctx, "nobody@example.test"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}
}
