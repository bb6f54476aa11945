package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skilltrack/internal/domain/skill"
	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type DesiredAssignment struct {
	SkillID uuid.UUID
	Level   skill.Level
}

type RootSkillCount struct {
	RootID uuid.UUID
	Name   string
	Count  int
}

// CatalogReader is the slice of the catalog the ledger needs.
type CatalogReader interface {
	ListAllSkills(ctx context.Context) ([]skill.Node, error)
}

type UserSkillUsecase interface {
	AssignOrUpdateSkills(ctx context.Context, userID uuid.UUID, actor Actor, desired []DesiredAssignment) ([]skill.UserSkillEntry, error)
	RemoveSkill(ctx context.Context, userID uuid.UUID, actor Actor, skillID uuid.UUID) error
	DistributionByRootSkill(ctx context.Context, userID uuid.UUID) ([]RootSkillCount, error)
	ListUserSkills(ctx context.Context, userID uuid.UUID) ([]skill.UserSkillEntry, error)
}

type UserSkill struct {
	repo     repository.UserSkillRepository
	catalog  CatalogReader
	authz    Authorizer
	notifier ChangeNotifier
	logger   *logger.Logger
	now      func() time.Time
}

func NewUserSkillUsecase(repo repository.UserSkillRepository, catalog CatalogReader, authz Authorizer, notifier ChangeNotifier, log *logger.Logger) *UserSkill {
	if notifier == nil {
		notifier = noNotifier{}
	}
	return &UserSkill{
		repo:     repo,
		catalog:  catalog,
		authz:    authz,
		notifier: notifier,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *UserSkill) WithClock(now func() time.Time) *UserSkill {
	if now != nil {
		u.now = now
	}
	return u
}

// CurrentLevel is the level of the most recent history record.
func CurrentLevel(e skill.UserSkillEntry) (skill.Level, error) {
	last, ok := e.Latest()
	if !ok {
		return "", fmt.Errorf("%w: entry_id=%s has no history", ErrCorruptEntry, e.ID)
	}
	return last.Level, nil
}

func userNotFound(id uuid.UUID) error {
	return fmt.Errorf("%w: user_id=%s", ErrUserNotFound, id)
}

func forbidden(userID uuid.UUID) error {
	return fmt.Errorf("%w: cannot modify skills of user_id=%s", ErrForbidden, userID)
}

func validateDesired(desired []DesiredAssignment) error {
	seen := make(map[uuid.UUID]bool, len(desired))
	for _, d := range desired {
		if d.SkillID == uuid.Nil {
			return fmt.Errorf("%w: skill id is required", ErrInvalidInput)
		}
		if !d.Level.Valid() {
			return fmt.Errorf("%w: level %q for skill_id=%s", ErrInvalidInput, d.Level, d.SkillID)
		}
		if seen[d.SkillID] {
			return fmt.Errorf("%w: skill_id=%s listed more than once", ErrInvalidInput, d.SkillID)
		}
		seen[d.SkillID] = true
	}
	return nil
}

// AssignOrUpdateSkills replaces the user's skill set with desired. Levels
// that did not change leave history untouched; skills missing from desired
// are unassigned.
func (u *UserSkill) AssignOrUpdateSkills(ctx context.Context, userID uuid.UUID, actor Actor, desired []DesiredAssignment) ([]skill.UserSkillEntry, error) {
	if !canWriteLedger(ctx, u.authz, userID, actor) {
		return nil, forbidden(userID)
	}
	if err := validateDesired(desired); err != nil {
		return nil, err
	}

	var out []skill.UserSkillEntry
	var created, updated, removed int
	err := u.repo.InTx(ctx, func(w repository.UserSkillWriter) error {
		if err := u.claimUser(ctx, w, userID); err != nil {
			return err
		}

		for _, d := range desired {
			ok, err := w.SkillExistsByID(ctx, d.SkillID)
			if err != nil {
				return err
			}
			if !ok {
				return skillNotFound(d.SkillID)
			}
		}

		current, err := w.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		bySkill := make(map[uuid.UUID]skill.UserSkillEntry, len(current))
		for _, e := range current {
			bySkill[e.SkillID] = e
		}

		now := u.now()
		wanted := make(map[uuid.UUID]bool, len(desired))
		for _, d := range desired {
			wanted[d.SkillID] = true

			e, ok := bySkill[d.SkillID]
			if !ok {
				entry := skill.UserSkillEntry{
					ID:        uuid.New(),
					UserID:    userID,
					SkillID:   d.SkillID,
					CreatedAt: now,
				}
				entry.History = []skill.LevelChange{entry.NextChange(d.Level, now, actor.UserID)}
				if err := w.Create(ctx, entry); err != nil {
					if errors.Is(err, repository.ErrSkillNodeNotFound) {
						return skillNotFound(d.SkillID)
					}
					return err
				}
				created++
				continue
			}

			level, err := CurrentLevel(e)
			if err != nil {
				return err
			}
			if level == d.Level {
				continue
			}
			if err := w.AppendHistory(ctx, e.ID, e.NextChange(d.Level, now, actor.UserID)); err != nil {
				return err
			}
			updated++
		}

		for _, e := range current {
			if wanted[e.SkillID] {
				continue
			}
			if err := w.Delete(ctx, e.ID); err != nil {
				return err
			}
			removed++
		}

		out, err = w.FindByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, u.fail("assign user skills", err)
	}

	u.logger.Info("user skills replaced",
		"user_id", userID.String(),
		"actor_id", actor.UserID.String(),
		"created", created,
		"updated", updated,
		"removed", removed,
	)
	if created+updated+removed > 0 {
		u.notifier.UserSkillsUpdated(userID)
	}
	return out, nil
}

func (u *UserSkill) RemoveSkill(ctx context.Context, userID uuid.UUID, actor Actor, skillID uuid.UUID) error {
	if !canWriteLedger(ctx, u.authz, userID, actor) {
		return forbidden(userID)
	}
	if skillID == uuid.Nil {
		return fmt.Errorf("%w: skill id is required", ErrInvalidInput)
	}

	err := u.repo.InTx(ctx, func(w repository.UserSkillWriter) error {
		if err := u.claimUser(ctx, w, userID); err != nil {
			return err
		}
		e, err := w.FindByUserAndSkill(ctx, userID, skillID)
		if err != nil {
			if errors.Is(err, repository.ErrUserSkillNotFound) {
				return fmt.Errorf("%w: user_id=%s skill_id=%s", ErrUserSkillNotFound, userID, skillID)
			}
			return err
		}
		return w.Delete(ctx, e.ID)
	})
	if err != nil {
		return u.fail("remove user skill", err)
	}

	u.notifier.UserSkillsUpdated(userID)
	return nil
}

// claimUser bumps the user's ledger version so a concurrent writer for the
// same user fails instead of interleaving.
func (u *UserSkill) claimUser(ctx context.Context, w repository.UserSkillWriter, userID uuid.UUID) error {
	version, err := w.SkillsVersion(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrLedgerUserMissing) {
			return userNotFound(userID)
		}
		return err
	}
	return w.AdvanceSkillsVersion(ctx, userID, version)
}

// DistributionByRootSkill counts the user's assignments per top-level skill.
// Every known root is present, in creation order, even with a zero count.
func (u *UserSkill) DistributionByRootSkill(ctx context.Context, userID uuid.UUID) ([]RootSkillCount, error) {
	var nodes []skill.Node
	var entries []skill.UserSkillEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodes, err = u.catalog.ListAllSkills(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = u.repo.FindByUserID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, u.fail("skill distribution", err)
	}

	forest := skill.NewForest(nodes)
	counts := make(map[uuid.UUID]int)
	for _, e := range entries {
		root, err := forest.Root(e.SkillID)
		if err != nil {
			u.logger.Warn("skipping assignment without resolvable root",
				"user_id", userID.String(),
				"skill_id", e.SkillID.String(),
				"error", err,
			)
			continue
		}
		counts[root.ID]++
	}

	roots := forest.Roots()
	out := make([]RootSkillCount, 0, len(roots))
	for _, r := range roots {
		out = append(out, RootSkillCount{RootID: r.ID, Name: r.Name, Count: counts[r.ID]})
	}
	return out, nil
}

func (u *UserSkill) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]skill.UserSkillEntry, error) {
	entries, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, u.fail("list user skills", err)
	}
	return entries, nil
}

func (u *UserSkill) fail(op string, err error) error {
	out := translate(err, op)
	if errors.Is(out, ErrInternal) || errors.Is(out, ErrStoreUnavailable) || errors.Is(out, ErrCorruptEntry) {
		u.logger.Error("user skill operation failed", "op", op, "error", err)
	}
	return out
}
