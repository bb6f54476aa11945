package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the slice of the account record the skill ledger relies on.
// Credentials and profile data live with the auth subsystem.
type User struct {
	ID            uuid.UUID
	Email         string
	Role          string
	SkillsVersion int64
	CreatedAt     time.Time
}
