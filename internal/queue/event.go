// Package queue defines the session event payloads exchanged over the
// message broker and the consumer that records them.
package queue

import "time"

// SessionQueue is the durable queue session events are routed to.
const SessionQueue = "auth.session"

// EventType names a session lifecycle transition.
type EventType string

const (
	EventSessionCreated EventType = "session.created" // login
	EventSessionRotated EventType = "session.rotated" // refresh
	EventSessionRevoked EventType = "session.revoked" // logout, password change, device removal
	EventUserDeleted    EventType = "user.deleted"
)

// SessionEvent is published after a session mutation has been persisted.
// It carries identifiers only, never token material.
type SessionEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	DeviceID   string    `json:"device_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewSessionEvent stamps an event with the current UTC time.
func NewSessionEvent(typ EventType, userID, deviceID string) SessionEvent {
	return SessionEvent{Type: typ, UserID: userID, DeviceID: deviceID, OccurredAt: time.Now().UTC()}
}
