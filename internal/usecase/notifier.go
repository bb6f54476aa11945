package usecase

import "github.com/google/uuid"

// ChangeNotifier fans committed changes out to live subscribers. Calls happen
// after commit and must not block.
type ChangeNotifier interface {
	SkillsUpdated(action string, skillID uuid.UUID)
	UserSkillsUpdated(userID uuid.UUID)
}

type noNotifier struct{}

func (noNotifier) SkillsUpdated(string, uuid.UUID) {}
func (noNotifier) UserSkillsUpdated(uuid.UUID) {}
