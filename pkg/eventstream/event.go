package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/bridge/pkg/session"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSessionCompleted is emitted after a translation session is persisted.
	EventTypeSessionCompleted = "bridge.session.completed"
)

// SessionCompletedEvent is a transport-neutral event payload for a finished
// translation session.
type SessionCompletedEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Session       session.Record `json:"session"`
}

// NewSessionCompletedEvent wraps rec in a new event with a fresh event ID.
func NewSessionCompletedEvent(rec session.Record) *SessionCompletedEvent {
	return &SessionCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSessionCompleted,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Session:       rec,
	}
}
