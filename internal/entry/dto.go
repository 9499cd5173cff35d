package entry

import (
	"time"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/entry"
)

// MarkEntryDTO records one attendance event. Instant defaults to now.
type MarkEntryDTO struct {
	PersonID string    `json:"person_id"`
	Action   string    `json:"action"`
	Instant  time.Time `json:"instant,omitempty"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d MarkEntryDTO) Validate() error {
	if d.PersonID == "" {
		return ValidationError{Msg: "person_id is required"}
	}
	if d.Action != string(entry.ActionEntry) && d.Action != string(entry.ActionExit) {
		return ValidationError{Msg: "action must be Entry or Exit"}
	}
	return nil
}

// UpdateEntryDTO carries a partial entry patch.
type UpdateEntryDTO struct {
	Instant *time.Time `json:"instant,omitempty"`
	Action  *string    `json:"action,omitempty"`
}

func (d UpdateEntryDTO) Validate() error {
	if d.Action != nil && *d.Action != string(entry.ActionEntry) && *d.Action != string(entry.ActionExit) {
		return ValidationError{Msg: "action must be Entry or Exit"}
	}
	return nil
}

func (d UpdateEntryDTO) Patch() map[string]interface{} {
	patch := map[string]interface{}{}
	if d.Instant != nil {
		patch["instant"] = d.Instant.Format(time.RFC3339)
	}
	if d.Action != nil {
		patch["action"] = *d.Action
	}
	return patch
}

// ValidDate reports whether date is a well-formed by-date path segment.
func ValidDate(date string) bool {
	_, err := time.Parse(entry.DateLayout, date)
	return err == nil
}
