// Package id centralizes identifier generation. Entities get UUIDv7 keys so
// primary keys sort by creation time and insert near the right edge of the
// B-tree.
package id

import "github.com/google/uuid"

// ID identifies an entity. It aliases uuid.UUID so pgx and encoding/json
// handle it natively.
type ID = uuid.UUID

// New returns a fresh UUIDv7.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to V4.
		return uuid.New()
	}
	return v7
}

// Parse validates and converts an external identifier.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero ID.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
