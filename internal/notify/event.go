package notify

import "time"

// Kind identifies what a notification reports.
type Kind string

const (
	// KindRecordCreated follows a successful create.
	KindRecordCreated Kind = "record-created"
	// KindRecordUpdated follows a successful update.
	KindRecordUpdated Kind = "record-updated"
)

// DefaultTTL is how long a notification stays visible before it dismisses itself.
const DefaultTTL = 3000 * time.Millisecond

// Event is a short-lived message describing the outcome of a create or update.
type Event struct {
	ID           int64         `json:"id"`
	Kind         Kind          `json:"kind"`
	Message      string        `json:"message"`
	RecordID     string        `json:"record_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	ExpiresAfter time.Duration `json:"-"`
}

// ExpiresAt returns the instant the event dismisses itself.
func (e Event) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.ExpiresAfter)
}

// Expired reports whether the event is no longer visible at now.
func (e Event) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}
