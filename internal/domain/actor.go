package domain

import "time"

// Actor is a field agent together with the preferences the core reads.
type Actor struct {
	ID            string
	Name          string
	LastLat       *float64
	LastLng       *float64
	PositionAt    *time.Time
	DigestEnabled bool
}

// GreetingName returns the name used in digests.
func (a Actor) GreetingName() string {
	if a.Name != "" {
		return a.Name
	}
	return "there"
}

// HasPosition reports whether a last known position was recorded.
func (a Actor) HasPosition() bool {
	return a.LastLat != nil && a.LastLng != nil
}
