package skill

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Node is one entry of the skill taxonomy. ChildIDs is ordered by the time
// each child was attached to this node.
type Node struct {
	ID         uuid.UUID
	Name       string
	ParentID   *uuid.UUID
	ChildIDs   []uuid.UUID
	CreatedSeq int64
	AttachSeq  int64
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

var ErrInvalidLevel = errors.New("invalid level")

func ParseLevel(raw string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(raw)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, raw)
	}
	return l, nil
}

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return true
	default:
		return false
	}
}

// LevelChange is one immutable record of a user's skill level history.
type LevelChange struct {
	Seq       int
	Level     Level
	ChangedAt time.Time
	ChangedBy uuid.UUID
}

// UserSkillEntry is a user's assignment of one skill. History is append-only
// and never empty for a stored entry.
type UserSkillEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SkillID   uuid.UUID
	SkillName string
	History   []LevelChange
	CreatedAt time.Time
}

// Latest returns the most recent history record.
func (e UserSkillEntry) Latest() (LevelChange, bool) {
	if len(e.History) == 0 {
		return LevelChange{}, false
	}
	return e.History[len(e.History)-1], true
}

// NextChange builds the record that would follow the current history.
func (e UserSkillEntry) NextChange(level Level, at time.Time, by uuid.UUID) LevelChange {
	seq := 1
	if last, ok := e.Latest(); ok {
		seq = last.Seq + 1
	}
	return LevelChange{Seq: seq, Level: level, ChangedAt: at, ChangedBy: by}
}
