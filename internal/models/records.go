package models

import "time"

// Signature is a stored handwritten signature image reference.
type Signature struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchHistoryEntry records one executed search.
type SearchHistoryEntry struct {
	ID          int64     `json:"id"`
	Query       string    `json:"query"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
}
