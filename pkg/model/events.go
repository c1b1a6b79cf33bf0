package model

import "encoding/json"

// Wire events exchanged over the websocket connection. The payload shapes
// are a contract with the dashboard frontend and must not change without a
// matching frontend release.

// Client-to-server event names.
const (
	EventStartEditing = "start_editing"
	EventStopEditing  = "stop_editing"
)

// Server-to-client event names.
const (
	EventResourceLocked   = "resource_locked"
	EventLockFailed       = "lock_failed"
	EventResourceUnlocked = "resource_unlocked"
	EventError            = "error"
)

// Envelope frames every inbound message: an event name plus its raw payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EditRequest is the payload of start_editing and stop_editing.
type EditRequest struct {
	ResourceID string `json:"resource_id" validate:"required,min=1,max=256"`
}

// ServerEvent is an outbound message, marshalled as-is onto the socket.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// LockedPayload accompanies resource_locked and lock_failed, naming the
// identity currently holding the lock.
type LockedPayload struct {
	Holder string `json:"holder"`
}

// UnlockedPayload accompanies resource_unlocked. Intentionally empty.
type UnlockedPayload struct{}

// ErrorPayload accompanies error replies sent to a single connection.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
