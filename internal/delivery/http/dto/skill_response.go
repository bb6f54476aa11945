package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"skilltrack/internal/domain/skill"

	"github.com/google/uuid"
)

type CreateSkillRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type RenameSkillRequest struct {
	Name string `json:"name"`
}

var ErrParentIDRequired = errors.New("parent_id is required")

// ReparentSkillRequest keeps parent_id raw so a missing key can be told
// apart from an explicit null, which moves the skill to the root.
type ReparentSkillRequest struct {
	ParentID json.RawMessage `json:"parent_id"`
}

func (r ReparentSkillRequest) Parent() (*uuid.UUID, error) {
	raw := bytes.TrimSpace(r.ParentID)
	if len(raw) == 0 {
		return nil, ErrParentIDRequired
	}
	if string(raw) == "null" {
		return nil, nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

type SkillResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	ParentID  *uuid.UUID  `json:"parent_id"`
	ChildIDs  []uuid.UUID `json:"child_ids"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func NewSkillResponse(n skill.Node) SkillResponse {
	children := n.ChildIDs
	if children == nil {
		children = []uuid.UUID{}
	}
	return SkillResponse{
		ID:        n.ID,
		Name:      n.Name,
		ParentID:  n.ParentID,
		ChildIDs:  children,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func NewSkillListResponse(nodes []skill.Node) []SkillResponse {
	out := make([]SkillResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NewSkillResponse(n))
	}
	return out
}
