package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

// SaveSignature stores a signature record.
func (s *Store) SaveSignature(sig *models.Signature) error {
	if sig.Name == "" || sig.FilePath == "" {
		return fmt.Errorf("signature name and file path are required")
	}

	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	sig.CreatedAt = now()

	_, err := s.db.Exec(`
        INSERT INTO signatures (id, name, file_path, created_at)
        VALUES (?, ?, ?, ?)`,
		sig.ID, sig.Name, sig.FilePath, sig.CreatedAt)
	if err != nil {
		return &models.StorageError{Op: "save signature", Err: err}
	}

	return nil
}

// ListSignatures returns all signatures, newest first.
func (s *Store) ListSignatures() ([]models.Signature, error) {
	rows, err := s.db.Query(`
        SELECT id, name, file_path, created_at
        FROM signatures
        ORDER BY created_at DESC`)
	if err != nil {
		return nil, &models.StorageError{Op: "list signatures", Err: err}
	}
	defer rows.Close()

	sigs := []models.Signature{}
	for rows.Next() {
		var sig models.Signature
		if err := rows.Scan(&sig.ID, &sig.Name, &sig.FilePath, &sig.CreatedAt); err != nil {
			return nil, &models.StorageError{Op: "scan signature", Err: err}
		}
		sigs = append(sigs, sig)
	}

	return sigs, rows.Err()
}

// DeleteSignature removes a signature record.
func (s *Store) DeleteSignature(id string) error {
	_, err := s.db.Exec("DELETE FROM signatures WHERE id = ?", id)
	if err != nil {
		return &models.StorageError{Op: "delete signature", Err: err}
	}
	return nil
}

// RecordSearch appends a search history entry, trimming the history to
// keep entries when keep is positive.
func (s *Store) RecordSearch(query string, resultCount, keep int) error {
	_, err := s.db.Exec(`
        INSERT INTO search_history (query, timestamp, result_count)
        VALUES (?, ?, ?)`,
		query, now(), resultCount)
	if err != nil {
		return &models.StorageError{Op: "record search", Err: err}
	}

	if keep > 0 {
		_, err = s.db.Exec(`
            DELETE FROM search_history
            WHERE id NOT IN (
                SELECT id FROM search_history
                ORDER BY timestamp DESC, id DESC
                LIMIT ?
            )`, keep)
		if err != nil {
			return &models.StorageError{Op: "trim search history", Err: err}
		}
	}

	return nil
}

// RecentSearches returns up to limit history entries, newest first.
func (s *Store) RecentSearches(limit int) ([]models.SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
        SELECT id, query, timestamp, result_count
        FROM search_history
        ORDER BY timestamp DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, &models.StorageError{Op: "query search history", Err: err}
	}
	defer rows.Close()

	entries := []models.SearchHistoryEntry{}
	for rows.Next() {
		var e models.SearchHistoryEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.Timestamp, &e.ResultCount); err != nil {
			return nil, &models.StorageError{Op: "scan search history", Err: err}
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
