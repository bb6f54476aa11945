package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventSkillsUpdated     = "skills_updated"
	EventUserSkillsUpdated = "user_skills_updated"
)

type SkillsUpdatedEvent struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	SkillID   uuid.UUID `json:"skill_id"`
	Timestamp string    `json:"timestamp"`
}

type UserSkillsUpdatedEvent struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp string    `json:"timestamp"`
}

// Notifier publishes committed changes to every connected subscriber.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) SkillsUpdated(action string, skillID uuid.UUID) {
	if !n.ready() {
		return
	}
	n.publish(SkillsUpdatedEvent{
		Type:      EventSkillsUpdated,
		Action:    action,
		SkillID:   skillID,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *Notifier) UserSkillsUpdated(userID uuid.UUID) {
	if !n.ready() {
		return
	}
	n.publish(UserSkillsUpdatedEvent{
		Type:      EventUserSkillsUpdated,
		UserID:    userID,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
}

func (n *Notifier) ready() bool {
	return n != nil && n.hub != nil
}

func (n *Notifier) publish(evt any) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
