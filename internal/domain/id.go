package domain

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewRecordID returns a time-ordered identifier for immutable records.
func NewRecordID(at time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// NewEventID returns a random identifier for audit rows.
func NewEventID() string {
	return uuid.NewString()
}
