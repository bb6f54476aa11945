package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"skilltrack/internal/pkg/logger"

	"github.com/google/uuid"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_NotifierReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.Nop())
	go hub.Run(ctx)

	client := NewClient(hub, nil)
	hub.Register(client)
	waitForClients(t, hub, 1)

	skillID := uuid.New()
	NewNotifier(hub).SkillsUpdated("created", skillID)

	select {
	case msg := <-client.send:
		var evt SkillsUpdatedEvent
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Type != EventSkillsUpdated || evt.Action != "created" || evt.SkillID != skillID {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for broadcast")
	}

	hub.Unregister(client)
	waitForClients(t, hub, 0)
	if _, open := <-client.send; open {
		t.Fatalf("expected send channel to be closed after unregister")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Nop())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(hub, nil)
	hub.Register(client)
	waitForClients(t, hub, 1)

	cancel()
	<-done

	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients after stop")
	}
	if _, open := <-client.send; open {
		t.Fatalf("expected send channel to be closed on stop")
	}
}

func TestNotifier_NilHubIsSafe(t *testing.T) {
	var n *Notifier
	n.UserSkillsUpdated(uuid.New())
	n.SkillsUpdated("created", uuid.New())
	NewNotifier(nil).SkillsUpdated("deleted", uuid.New())
	NewNotifier(nil).UserSkillsUpdated(uuid.New())

	// a nil *Notifier stored in an interface is not a nil interface
	var notifier interface {
		SkillsUpdated(action string, skillID uuid.UUID)
		UserSkillsUpdated(userID uuid.UUID)
	} = n
	notifier.SkillsUpdated("moved", uuid.New())
	notifier.UserSkillsUpdated(uuid.New())
}
