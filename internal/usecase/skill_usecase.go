package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skilltrack/internal/domain/skill"
	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/repository"

	"github.com/google/uuid"
)

type SkillUsecase interface {
	CreateSkill(ctx context.Context, name string, parentID *uuid.UUID) (skill.Node, error)
	RenameSkill(ctx context.Context, id uuid.UUID, newName string) (skill.Node, error)
	ReparentSkill(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (skill.Node, error)
	DeleteSkill(ctx context.Context, id uuid.UUID) error
	GetRootSkills(ctx context.Context) ([]skill.Node, error)
	GetAncestorRoot(ctx context.Context, id uuid.UUID) (*skill.Node, error)
	ListAllSkills(ctx context.Context) ([]skill.Node, error)
	GetSkill(ctx context.Context, id uuid.UUID) (skill.Node, error)
}

type Skill struct {
	repo     repository.SkillRepository
	cache    CatalogCache
	cacheTTL time.Duration
	notifier ChangeNotifier
	logger   *logger.Logger
	now      func() time.Time
}

func NewSkillUsecase(repo repository.SkillRepository, cache CatalogCache, notifier ChangeNotifier, log *logger.Logger) *Skill {
	if cache == nil {
		cache = noCache{}
	}
	if notifier == nil {
		notifier = noNotifier{}
	}
	return &Skill{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for timestamps.
func (u *Skill) WithClock(now func() time.Time) *Skill {
	if now != nil {
		u.now = now
	}
	return u
}

// WithCacheTTL sets the catalog snapshot lifetime; zero keeps the cache default.
func (u *Skill) WithCacheTTL(ttl time.Duration) *Skill {
	u.cacheTTL = ttl
	return u
}

func skillNotFound(id uuid.UUID) error {
	return fmt.Errorf("%w: skill_id=%s", ErrSkillNotFound, id)
}

func duplicateName(name string) error {
	return fmt.Errorf("%w: name=%q", ErrDuplicateName, name)
}

func (u *Skill) CreateSkill(ctx context.Context, name string, parentID *uuid.UUID) (skill.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return skill.Node{}, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
	}

	var created skill.Node
	err := u.repo.InTx(ctx, func(w repository.SkillWriter) error {
		if _, err := w.FindByName(ctx, name); err == nil {
			return duplicateName(name)
		} else if !errors.Is(err, repository.ErrSkillNodeNotFound) {
			return err
		}

		var parent skill.Node
		if parentID != nil {
			p, err := w.FindByID(ctx, *parentID)
			if err != nil {
				if errors.Is(err, repository.ErrSkillNodeNotFound) {
					return skillNotFound(*parentID)
				}
				return err
			}
			parent = p
		}

		seq, err := w.NextSeq(ctx)
		if err != nil {
			return err
		}

		now := u.now()
		n := skill.Node{
			ID:         uuid.New(),
			Name:       name,
			CreatedSeq: seq,
			AttachSeq:  seq,
			Version:    1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if parentID != nil {
			pid := *parentID
			n.ParentID = &pid
		}

		if err := w.Insert(ctx, n); err != nil {
			switch {
			case errors.Is(err, repository.ErrSkillNameTaken):
				return duplicateName(name)
			case errors.Is(err, repository.ErrSkillNodeNotFound):
				return skillNotFound(*parentID)
			default:
				return err
			}
		}
		if parentID != nil {
			if err := w.Touch(ctx, parent.ID, parent.Version, now); err != nil {
				return err
			}
		}

		n.ChildIDs = []uuid.UUID{}
		created = n
		return nil
	})
	if err != nil {
		return skill.Node{}, u.fail("create skill", err)
	}

	u.catalogChanged(ctx, "created", created.ID)
	return created, nil
}

func (u *Skill) RenameSkill(ctx context.Context, id uuid.UUID, newName string) (skill.Node, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return skill.Node{}, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
	}

	var out skill.Node
	changed := false
	err := u.repo.InTx(ctx, func(w repository.SkillWriter) error {
		n, err := w.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrSkillNodeNotFound) {
				return skillNotFound(id)
			}
			return err
		}
		if n.Name == newName {
			out = n
			return nil
		}

		if other, err := w.FindByName(ctx, newName); err == nil && other.ID != id {
			return duplicateName(newName)
		} else if err != nil && !errors.Is(err, repository.ErrSkillNodeNotFound) {
			return err
		}

		now := u.now()
		if err := w.Rename(ctx, id, newName, n.Version, now); err != nil {
			if errors.Is(err, repository.ErrSkillNameTaken) {
				return duplicateName(newName)
			}
			return err
		}

		n.Name = newName
		n.Version++
		n.UpdatedAt = now
		out = n
		changed = true
		return nil
	})
	if err != nil {
		return skill.Node{}, u.fail("rename skill", err)
	}

	if changed {
		u.catalogChanged(ctx, "renamed", id)
	}
	return out, nil
}

func (u *Skill) ReparentSkill(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (skill.Node, error) {
	var out skill.Node
	changed := false
	err := u.repo.InTx(ctx, func(w repository.SkillWriter) error {
		rev, err := w.CatalogRevision(ctx)
		if err != nil {
			return err
		}

		n, err := w.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrSkillNodeNotFound) {
				return skillNotFound(id)
			}
			return err
		}
		if sameParent(n.ParentID, newParentID) {
			out = n
			return nil
		}

		var newParent skill.Node
		if newParentID != nil {
			if *newParentID == id {
				return fmt.Errorf("%w: skill_id=%s cannot be its own parent", ErrCycle, id)
			}
			newParent, err = w.FindByID(ctx, *newParentID)
			if err != nil {
				if errors.Is(err, repository.ErrSkillNodeNotFound) {
					return skillNotFound(*newParentID)
				}
				return err
			}
			if err := u.ensureNotDescendant(ctx, w, id, newParent); err != nil {
				return err
			}
		}

		if err := w.AdvanceCatalogRevision(ctx, rev); err != nil {
			return err
		}

		now := u.now()
		if n.ParentID != nil {
			oldParent, err := w.FindByID(ctx, *n.ParentID)
			if err != nil {
				if errors.Is(err, repository.ErrSkillNodeNotFound) {
					return fmt.Errorf("%w: skill_id=%s has missing parent %s", ErrCorruptHierarchy, id, *n.ParentID)
				}
				return err
			}
			if err := w.Touch(ctx, oldParent.ID, oldParent.Version, now); err != nil {
				return err
			}
		}

		seq, err := w.NextSeq(ctx)
		if err != nil {
			return err
		}
		if err := w.SetParent(ctx, id, newParentID, seq, n.Version, now); err != nil {
			if errors.Is(err, repository.ErrSkillNodeNotFound) {
				return skillNotFound(*newParentID)
			}
			return err
		}
		if newParentID != nil {
			if err := w.Touch(ctx, newParent.ID, newParent.Version, now); err != nil {
				return err
			}
		}

		out, err = w.FindByID(ctx, id)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return skill.Node{}, u.fail("reparent skill", err)
	}

	if changed {
		u.catalogChanged(ctx, "moved", id)
	}
	return out, nil
}

// ensureNotDescendant walks up from candidate and fails if it reaches id.
// The walk is bounded by the catalog size.
func (u *Skill) ensureNotDescendant(ctx context.Context, w repository.SkillWriter, id uuid.UUID, candidate skill.Node) error {
	total, err := w.Count(ctx)
	if err != nil {
		return err
	}

	cur := candidate
	for steps := 0; steps <= total; steps++ {
		if cur.ID == id {
			return fmt.Errorf("%w: skill_id=%s is an ancestor of %s", ErrCycle, id, candidate.ID)
		}
		if cur.ParentID == nil {
			return nil
		}
		next, err := w.FindByID(ctx, *cur.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrSkillNodeNotFound) {
				return fmt.Errorf("%w: skill_id=%s has missing parent %s", ErrCorruptHierarchy, cur.ID, *cur.ParentID)
			}
			return err
		}
		cur = next
	}
	return fmt.Errorf("%w: ancestor walk from %s exceeds %d nodes", ErrCorruptHierarchy, candidate.ID, total)
}

func (u *Skill) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	var removed []skill.Node
	var droppedEntries int64
	err := u.repo.InTx(ctx, func(w repository.SkillWriter) error {
		n, err := w.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrSkillNodeNotFound) {
				return skillNotFound(id)
			}
			return err
		}

		total, err := w.Count(ctx)
		if err != nil {
			return err
		}
		order, err := collectSubtree(ctx, w, n, total)
		if err != nil {
			return err
		}

		now := u.now()
		if n.ParentID != nil {
			parent, err := w.FindByID(ctx, *n.ParentID)
			if err != nil {
				return err
			}
			if err := w.Touch(ctx, parent.ID, parent.Version, now); err != nil {
				return err
			}
		}

		for _, node := range order {
			dropped, err := w.DeleteEntriesForSkill(ctx, node.ID)
			if err != nil {
				return err
			}
			droppedEntries += dropped
			if err := w.Delete(ctx, node.ID, node.Version); err != nil {
				return err
			}
		}
		removed = order
		return nil
	})
	if err != nil {
		return u.fail("delete skill", err)
	}

	u.logger.Info("skill subtree deleted",
		"skill_id", id.String(),
		"nodes", len(removed),
		"user_entries", droppedEntries,
	)
	u.catalogChanged(ctx, "deleted", id)
	return nil
}

// collectSubtree returns root's subtree in post-order, children before
// parents and siblings in attach order.
func collectSubtree(ctx context.Context, w repository.SkillWriter, root skill.Node, limit int) ([]skill.Node, error) {
	out := make([]skill.Node, 0)
	seen := map[uuid.UUID]bool{}

	var visit func(n skill.Node) error
	visit = func(n skill.Node) error {
		if seen[n.ID] || len(seen) > limit {
			return fmt.Errorf("%w: subtree of %s revisits %s", ErrCorruptHierarchy, root.ID, n.ID)
		}
		seen[n.ID] = true
		for _, childID := range n.ChildIDs {
			child, err := w.FindByID(ctx, childID)
			if err != nil {
				return err
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		out = append(out, n)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Skill) GetRootSkills(ctx context.Context) ([]skill.Node, error) {
	roots, err := u.repo.ListRoots(ctx)
	if err != nil {
		return nil, u.fail("list root skills", err)
	}
	return roots, nil
}

// GetAncestorRoot returns nil without error when the parent chain is broken.
func (u *Skill) GetAncestorRoot(ctx context.Context, id uuid.UUID) (*skill.Node, error) {
	nodes, err := u.ListAllSkills(ctx)
	if err != nil {
		return nil, err
	}

	root, err := skill.NewForest(nodes).Root(id)
	switch {
	case err == nil:
		return &root, nil
	case errors.Is(err, skill.ErrUnknownNode):
		return nil, skillNotFound(id)
	case errors.Is(err, skill.ErrBrokenChain):
		u.logger.Warn("skill ancestor chain broken", "skill_id", id.String(), "error", err)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrCorruptHierarchy, err)
	}
}

func (u *Skill) ListAllSkills(ctx context.Context) ([]skill.Node, error) {
	var cached []cachedNode
	hit, err := u.cache.GetJSON(ctx, catalogCacheKey, &cached)
	if err != nil {
		u.logger.Debug("catalog cache read failed", "error", err)
	}
	if hit && err == nil {
		return fromCache(cached), nil
	}

	nodes, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, u.fail("list skills", err)
	}
	if err := u.cache.SetJSON(ctx, catalogCacheKey, toCache(nodes), u.cacheTTL); err != nil {
		u.logger.Debug("catalog cache write failed", "error", err)
	}
	return nodes, nil
}

func (u *Skill) GetSkill(ctx context.Context, id uuid.UUID) (skill.Node, error) {
	n, err := u.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSkillNodeNotFound) {
			return skill.Node{}, skillNotFound(id)
		}
		return skill.Node{}, u.fail("get skill", err)
	}
	return n, nil
}

func (u *Skill) catalogChanged(ctx context.Context, action string, id uuid.UUID) {
	if err := u.cache.Delete(ctx, catalogCacheKey); err != nil {
		u.logger.Warn("catalog cache invalidation failed", "error", err)
	}
	u.notifier.SkillsUpdated(action, id)
}

func (u *Skill) fail(op string, err error) error {
	out := translate(err, op)
	if errors.Is(out, ErrInternal) || errors.Is(out, ErrStoreUnavailable) || errors.Is(out, ErrCorruptHierarchy) {
		u.logger.Error("skill catalog operation failed", "op", op, "error", err)
	}
	return out
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func toCache(nodes []skill.Node) []cachedNode {
	out := make([]cachedNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, cachedNode{
			ID:         n.ID,
			Name:       n.Name,
			ParentID:   n.ParentID,
			ChildIDs:   n.ChildIDs,
			CreatedSeq: n.CreatedSeq,
			AttachSeq:  n.AttachSeq,
			Version:    n.Version,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
		})
	}
	return out
}

func fromCache(cached []cachedNode) []skill.Node {
	out := make([]skill.Node, 0, len(cached))
	for _, c := range cached {
		children := c.ChildIDs
		if children == nil {
			children = []uuid.UUID{}
		}
		out = append(out, skill.Node{
			ID:         c.ID,
			Name:       c.Name,
			ParentID:   c.ParentID,
			ChildIDs:   children,
			CreatedSeq: c.CreatedSeq,
			AttachSeq:  c.AttachSeq,
			Version:    c.Version,
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return out
}
