// Package id provides UUIDv7 identifiers for all entities.
// UUIDv7 is time-ordered, which keeps b-tree indexes append-friendly.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier type used across the system.
type ID = uuid.UUID

// Nil is the zero ID.
var Nil = uuid.Nil

// New generates a new UUIDv7.
// Falls back to UUIDv4 if the monotonic clock source fails.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v7
}

// Parse parses an ID from string.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse parses an ID from string, panics on error.
// Use only in tests and static initialization.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil reports whether the id is the zero value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
