package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is a sortable, URL-safe identifier assigned to engine-owned entities
// (currently: jobs, via NewID).
type ID string

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is the zero value ("").
func (id ID) IsZero() bool {
	return id == ""
}

// NewID generates a new, time-sortable ID.
func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate new ID: %w", err)
	}
	return ID(id.String()), nil
}
