package events

import (
	"time"

	"github.com/google/uuid"
)

// Change-event types relayed to signed-in clients. They mirror the
// attendance backend's push categories: a record changed, go re-read it.
const (
	EntryChanged      = "entry.changed"
	PersonChanged     = "person.changed"
	PermissionChanged = "permission.changed"
)

// NewChange builds a change event for one record. The payload intentionally
// carries only identifiers; clients re-fetch the record rather than trusting
// a possibly stale snapshot.
func NewChange(eventType, recordID, personID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"record_id": recordID,
			"person_id": personID,
		},
	}
}
