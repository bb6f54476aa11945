package dto

import (
	"time"

	"skilltrack/internal/domain/skill"

	"github.com/google/uuid"
)

type AssignSkillItem struct {
	SkillID uuid.UUID `json:"skill_id"`
	Level   string    `json:"level"`
}

type AssignSkillsRequest struct {
	Skills []AssignSkillItem `json:"skills"`
}

type LevelChangeResponse struct {
	Seq       int       `json:"seq"`
	Level     string    `json:"level"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy uuid.UUID `json:"changed_by"`
}

type UserSkillResponse struct {
	ID        uuid.UUID             `json:"id"`
	SkillID   uuid.UUID             `json:"skill_id"`
	SkillName string                `json:"skill_name"`
	Level     string                `json:"level"`
	History   []LevelChangeResponse `json:"history"`
	CreatedAt time.Time             `json:"created_at"`
}

type RootSkillCountResponse struct {
	RootID uuid.UUID `json:"root_id"`
	Name   string    `json:"name"`
	Count  int       `json:"count"`
}

func NewUserSkillResponse(e skill.UserSkillEntry) UserSkillResponse {
	res := UserSkillResponse{
		ID:        e.ID,
		SkillID:   e.SkillID,
		SkillName: e.SkillName,
		History:   make([]LevelChangeResponse, 0, len(e.History)),
		CreatedAt: e.CreatedAt,
	}
	if last, ok := e.Latest(); ok {
		res.Level = string(last.Level)
	}
	for _, h := range e.History {
		res.History = append(res.History, LevelChangeResponse{
			Seq:       h.Seq,
			Level:     string(h.Level),
			ChangedAt: h.ChangedAt,
			ChangedBy: h.ChangedBy,
		})
	}
	return res
}

func NewUserSkillListResponse(entries []skill.UserSkillEntry) []UserSkillResponse {
	out := make([]UserSkillResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewUserSkillResponse(e))
	}
	return out
}
