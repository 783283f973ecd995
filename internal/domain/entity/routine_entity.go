package entity

import (
	"encoding/json"
	"time"
)

// SavedRoutine is a generated routine kept in the user's library.
// Routine is the generator's output and is stored as-is.
type SavedRoutine struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Title     string          `json:"title"`
	Goals     []string        `json:"goals"`
	Style     string          `json:"style"`
	Routine   json.RawMessage `json:"routine,omitempty"`
}

// RoutineProfile is the setup-form payload sent to the generator.
// Only Goals and Style are inspected; the rest is passed through.
type RoutineProfile struct {
	Goals   []string        `json:"goals"`
	Style   string          `json:"routine_style"`
	Details json.RawMessage `json:"details,omitempty"`
}
