package entry

import "time"

// Action is the direction of an attendance event.
type Action string

const (
	ActionEntry Action = "Entry"
	ActionExit  Action = "Exit"
)

// DateLayout is the wire format for by-date queries.
const DateLayout = "2006-01-02"

// Entry is a single attendance event owned by the attendance backend.
type Entry struct {
	ID       string    `json:"id"`
	PersonID string    `json:"person_id"`
	Instant  time.Time `json:"instant"`
	Action   Action    `json:"action"`
}
