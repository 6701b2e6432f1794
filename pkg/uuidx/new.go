// Package uuidx generates version 7 UUIDs, which sort by creation time. Run
// identifiers use them so log lines group naturally.
package uuidx

import "github.com/google/uuid"

// New returns a fresh version 7 UUID. It panics if generation fails, which
// only happens when the system source of randomness is broken.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a fresh version 7 UUID in string form.
func NewString() string {
	return New().String()
}
