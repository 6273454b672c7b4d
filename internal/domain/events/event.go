package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Realtime event types
const (
	EventTaskCreated         = "task:created"
	EventTaskUpdated         = "task:updated"
	EventTaskCompleted       = "task:completed"
	EventTaskDeleted         = "task:deleted"
	EventCommentCreated      = "comment:created"
	EventLeaderboardRollover = "leaderboard:rollover"
)

// Event is a message fanned out to every subscriber of Room.
type Event struct {
	Type      string      `json:"type"`
	Room      string      `json:"room"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// New stamps an event for room with the current UTC time.
func New(eventType, room string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Room:      room,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers events best-effort. Implementations must not block the
// caller on slow or unavailable subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

func ProjectRoom(id uuid.UUID) string { return "project:" + id.String() }

func TaskRoom(id uuid.UUID) string { return "task:" + id.String() }

func UserRoom(id uuid.UUID) string { return "user:" + id.String() }
