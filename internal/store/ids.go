package store

import "github.com/google/uuid"

// newID returns a prefixed opaque identifier, e.g. "user_5f8a…".
// IDs are random, never derived from timestamps, so concurrent creation
// cannot collide.
func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
