package audit

import (
	"time"
)

// Record is one audited tool call.
// This is immutable - once created, it should never be modified
type Record struct {
	ID         string    `json:"id"`
	Tool       string    `json:"tool"`
	Transport  string    `json:"transport,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// DefaultListLimit caps List* queries when the caller passes a non-positive limit.
const DefaultListLimit = 50

// timeLayout is fixed width so that text ordering in SQLite matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
