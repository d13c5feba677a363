package models

import (
	"errors"
	"time"
)

// Folder groups documents. Folders form a forest via ParentID; a cycle is
// an invariant violation rejected at write time.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ParentID   *string   `json:"parent_id,omitempty"`
	Color      string    `json:"color"`
	Icon       string    `json:"icon"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks folder invariants.
func (f *Folder) Validate() error {
	if f.Name == "" {
		return errors.New("folder name is required")
	}
	if f.ParentID != nil && *f.ParentID == f.ID {
		return errors.New("folder cannot be its own parent")
	}
	return nil
}
