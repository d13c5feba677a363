package models

import (
	"errors"
	"time"
)

// Tag is a user-defined label. Names are unique store-wide.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks tag invariants.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return errors.New("tag name is required")
	}
	return nil
}
