// Package id provides ID generation helpers.
package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Random generates hex-encoded UUIDv4 identifiers for comment-link
// artifacts. Collisions are treated as negligible and not checked.
type Random struct{}

// NewRandom creates a new Random generator.
func NewRandom() *Random {
	return &Random{}
}

// NewID returns a fresh 32-character hex identifier.
func (Random) NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
