package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"skilltrack/internal/database/sqlite"
	"skilltrack/internal/domain/skill"
	"skilltrack/internal/pkg/logger"
	"skilltrack/internal/repository"
	"skilltrack/internal/testutil"

	"github.com/google/uuid"
)

type roleAuthorizer map[string]bool

func (a roleAuthorizer) IsElevated(_ context.Context, actor Actor) bool {
	return a[actor.Role]
}

type ledgerFixture struct {
	db       *sqlite.DB
	skills   *Skill
	ledger   *UserSkill
	notifier *recordingNotifier
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	db := testutil.OpenSQLite(t)
	notifier := &recordingNotifier{}
	skills := NewSkillUsecase(repository.NewPostgresSkillRepository(db), nil, notifier, logger.Nop())
	ledger := NewUserSkillUsecase(
		repository.NewPostgresUserSkillRepository(db),
		skills,
		roleAuthorizer{"admin": true},
		notifier,
		logger.Nop(),
	)
	return ledgerFixture{db: db, skills: skills, ledger: ledger, notifier: notifier}
}

func (f ledgerFixture) member(t *testing.T) Actor {
	t.Helper()
	u := testutil.CreateUser(t, f.db, "member")
	return Actor{UserID: u.ID, Role: u.Role}
}

func assign(t *testing.T, f ledgerFixture, actor Actor, desired ...DesiredAssignment) []skill.UserSkillEntry {
	t.Helper()
	out, err := f.ledger.AssignOrUpdateSkills(context.Background(), actor.UserID, actor, desired)
	if err != nil {
		t.Fatalf("AssignOrUpdateSkills: %v", err)
	}
	return out
}

func TestUserSkill_FirstAssignmentCreatesOneEntry(t *testing.T) {
	f := newLedgerFixture(t)
	golang := mustCreate(t, f.skills, "Go", nil)
	actor := f.member(t)

	out := assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelBeginner})

	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}
	e := out[0]
	if e.SkillID != golang.ID || e.SkillName != "Go" || e.UserID != actor.UserID {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if len(e.History) != 1 || e.History[0].Seq != 1 || e.History[0].ChangedBy != actor.UserID {
		t.Fatalf("expected a single history record by the actor, got %+v", e.History)
	}
	if len(f.notifier.userSkills) != 1 || f.notifier.userSkills[0] != actor.UserID {
		t.Fatalf("expected one user_skills event, got %v", f.notifier.userSkills)
	}
}

func TestUserSkill_UnchangedLevelKeepsHistory(t *testing.T) {
	f := newLedgerFixture(t)
	golang := mustCreate(t, f.skills, "Go", nil)
	actor := f.member(t)
	want := DesiredAssignment{SkillID: golang.ID, Level: skill.LevelIntermediate}

	assign(t, f, actor, want)
	out := assign(t, f, actor, want)

	if len(out) != 1 || len(out[0].History) != 1 {
		t.Fatalf("expected history to stay at one record, got %+v", out)
	}
	if len(f.notifier.userSkills) != 1 {
		t.Fatalf("expected no event for a no-op write, got %d events", len(f.notifier.userSkills))
	}
}

func TestUserSkill_ChangedLevelAppendsOneRecord(t *testing.T) {
	f := newLedgerFixture(t)
	golang := mustCreate(t, f.skills, "Go", nil)
	actor := f.member(t)

	first := assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelBeginner})
	out := assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelAdvanced})

	if len(out) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(out))
	}
	if out[0].ID != first[0].ID {
		t.Fatalf("expected the same entry to be updated")
	}
	h := out[0].History
	if len(h) != 2 || h[0].Level != skill.LevelBeginner || h[1].Level != skill.LevelAdvanced || h[1].Seq != 2 {
		t.Fatalf("unexpected history: %+v", h)
	}

	level, err := CurrentLevel(out[0])
	if err != nil {
		t.Fatalf("CurrentLevel: %v", err)
	}
	if level != skill.LevelAdvanced {
		t.Fatalf("expected advanced, got %s", level)
	}
}

func TestUserSkill_FullReplaceRemovesMissingSkills(t *testing.T) {
	f := newLedgerFixture(t)
	golang := mustCreate(t, f.skills, "Go", nil)
	rust := mustCreate(t, f.skills, "Rust", nil)
	actor := f.member(t)

	assign(t, f, actor,
		DesiredAssignment{SkillID: golang.ID, Level: skill.LevelBeginner},
		DesiredAssignment{SkillID: rust.ID, Level: skill.LevelExpert},
	)
	out := assign(t, f, actor, DesiredAssignment{SkillID: rust.ID, Level: skill.LevelExpert})

	if len(out) != 1 || out[0].SkillID != rust.ID {
		t.Fatalf("expected only Rust to remain, got %+v", out)
	}

	empty := assign(t, f, actor)
	if len(empty) != 0 {
		t.Fatalf("expected an empty desired list to clear the ledger, got %+v", empty)
	}
}

func TestUserSkill_RejectsInvalidRequestsWithoutChanges(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	golang := mustCreate(t, f.skills, "Go", nil)
	actor := f.member(t)

	assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelBeginner})

	cases := []struct {
		name    string
		desired []DesiredAssignment
		want    error
	}{
		{"invalid level", []DesiredAssignment{{SkillID: golang.ID, Level: "guru"}}, ErrInvalidInput},
		{"nil skill", []DesiredAssignment{{Level: skill.LevelExpert}}, ErrInvalidInput},
		{"duplicate skill", []DesiredAssignment{
			{SkillID: golang.ID, Level: skill.LevelExpert},
			{SkillID: golang.ID, Level: skill.LevelAdvanced},
		}, ErrInvalidInput},
		{"unknown skill", []DesiredAssignment{
			{SkillID: golang.ID, Level: skill.LevelExpert},
			{SkillID: uuid.New(), Level: skill.LevelExpert},
		}, ErrSkillNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.AssignOrUpdateSkills(ctx, actor.UserID, actor, tc.desired)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	out, err := f.ledger.ListUserSkills(ctx, actor.UserID)
	if err != nil {
		t.Fatalf("ListUserSkills: %v", err)
	}
	if len(out) != 1 || len(out[0].History) != 1 {
		t.Fatalf("expected ledger untouched by rejected writes, got %+v", out)
	}

	ghost := Actor{UserID: uuid.New(), Role: "admin"}
	if _, err := f.ledger.AssignOrUpdateSkills(ctx, ghost.UserID, ghost, nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserSkill_Permissions(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	golang := mustCreate(t, f.skills, "Go", nil)
	owner := f.member(t)
	other := f.member(t)
	admin := Actor{UserID: testutil.CreateUser(t, f.db, "admin").ID, Role: "admin"}
	desired := []DesiredAssignment{{SkillID: golang.ID, Level: skill.LevelBeginner}}

	if _, err := f.ledger.AssignOrUpdateSkills(ctx, owner.UserID, other, desired); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another member, got %v", err)
	}
	if err := f.ledger.RemoveSkill(ctx, owner.UserID, other, golang.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on remove, got %v", err)
	}

	out, err := f.ledger.AssignOrUpdateSkills(ctx, owner.UserID, admin, desired)
	if err != nil {
		t.Fatalf("elevated actor should be allowed: %v", err)
	}
	if out[0].History[0].ChangedBy != admin.UserID {
		t.Fatalf("expected history to record the elevated actor")
	}
}

func TestUserSkill_RemoveAndReassignStartsFreshHistory(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	golang := mustCreate(t, f.skills, "Go", nil)
	actor := f.member(t)

	if err := f.ledger.RemoveSkill(ctx, actor.UserID, actor, golang.ID); !errors.Is(err, ErrUserSkillNotFound) {
		t.Fatalf("expected ErrUserSkillNotFound, got %v", err)
	}

	first := assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelBeginner})
	assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelExpert})

	if err := f.ledger.RemoveSkill(ctx, actor.UserID, actor, golang.ID); err != nil {
		t.Fatalf("RemoveSkill: %v", err)
	}

	again := assign(t, f, actor, DesiredAssignment{SkillID: golang.ID, Level: skill.LevelIntermediate})
	if again[0].ID == first[0].ID {
		t.Fatalf("expected a new entry after removal")
	}
	if len(again[0].History) != 1 || again[0].History[0].Level != skill.LevelIntermediate {
		t.Fatalf("expected fresh history, got %+v", again[0].History)
	}
}

func TestUserSkill_DistributionCountsByRoot(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	prog := mustCreate(t, f.skills, "Programming", nil)
	backend := mustCreate(t, f.skills, "Backend", &prog)
	golang := mustCreate(t, f.skills, "Go", &backend)
	design := mustCreate(t, f.skills, "Design", nil)
	actor := f.member(t)

	assign(t, f, actor,
		DesiredAssignment{SkillID: backend.ID, Level: skill.LevelAdvanced},
		DesiredAssignment{SkillID: golang.ID, Level: skill.LevelExpert},
	)

	dist, err := f.ledger.DistributionByRootSkill(ctx, actor.UserID)
	if err != nil {
		t.Fatalf("DistributionByRootSkill: %v", err)
	}
	want := []RootSkillCount{
		{RootID: prog.ID, Name: "Programming", Count: 2},
		{RootID: design.ID, Name: "Design", Count: 0},
	}
	if len(dist) != len(want) {
		t.Fatalf("distribution = %+v, want %+v", dist, want)
	}
	for i := range want {
		if dist[i] != want[i] {
			t.Fatalf("distribution[%d] = %+v, want %+v", i, dist[i], want[i])
		}
	}

	other := f.member(t)
	empty, err := f.ledger.DistributionByRootSkill(ctx, other.UserID)
	if err != nil {
		t.Fatalf("DistributionByRootSkill: %v", err)
	}
	if len(empty) != 2 || empty[0].Count != 0 || empty[1].Count != 0 {
		t.Fatalf("expected zero counts for every root, got %+v", empty)
	}
}

func TestUserSkill_DeletedSkillLeavesLedger(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	prog := mustCreate(t, f.skills, "Programming", nil)
	backend := mustCreate(t, f.skills, "Backend", &prog)
	golang := mustCreate(t, f.skills, "Go", &backend)
	actor := f.member(t)

	assign(t, f, actor,
		DesiredAssignment{SkillID: prog.ID, Level: skill.LevelBeginner},
		DesiredAssignment{SkillID: golang.ID, Level: skill.LevelExpert},
	)

	if err := f.skills.DeleteSkill(ctx, backend.ID); err != nil {
		t.Fatalf("DeleteSkill: %v", err)
	}

	out, err := f.ledger.ListUserSkills(ctx, actor.UserID)
	if err != nil {
		t.Fatalf("ListUserSkills: %v", err)
	}
	if len(out) != 1 || out[0].SkillID != prog.ID {
		t.Fatalf("expected only the Programming assignment to survive, got %+v", out)
	}
}

func TestUserSkill_ConcurrentWritesKeepHistoryContiguous(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	golang := mustCreate(t, f.skills, "Go", nil)
	actor := f.member(t)

	levels := []skill.Level{skill.LevelBeginner, skill.LevelIntermediate, skill.LevelAdvanced, skill.LevelExpert}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(level skill.Level) {
			defer wg.Done()
			_, err := f.ledger.AssignOrUpdateSkills(ctx, actor.UserID, actor,
				[]DesiredAssignment{{SkillID: golang.ID, Level: level}})
			errs <- err
		}(levels[i%len(levels)])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	out, err := f.ledger.ListUserSkills(ctx, actor.UserID)
	if err != nil {
		t.Fatalf("ListUserSkills: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected a single entry, got %d", len(out))
	}
	for i, c := range out[0].History {
		if c.Seq != i+1 {
			t.Fatalf("history seq gap at %d: %+v", i, out[0].History)
		}
		if i > 0 && c.Level == out[0].History[i-1].Level {
			t.Fatalf("history repeats level %s at seq %d", c.Level, c.Seq)
		}
	}
}

func TestCurrentLevel_EmptyHistory(t *testing.T) {
	if _, err := CurrentLevel(skill.UserSkillEntry{ID: uuid.New()}); !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("expected ErrCorruptEntry, got %v", err)
	}
}
