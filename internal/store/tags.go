package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

// CreateTag inserts a tag. Names are unique; inserting an existing name
// fails at the engine level.
func (s *Store) CreateTag(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validate tag: %w", err)
	}

	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	tag.CreatedAt = now()

	_, err := s.db.Exec(`
        INSERT INTO tags (id, name, color, created_at)
        VALUES (?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		return &models.StorageError{Op: "create tag", Err: err}
	}

	return nil
}

// DeleteTag removes a tag and, via cascade, its document links.
func (s *Store) DeleteTag(id string) error {
	res, err := s.db.Exec("DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return &models.StorageError{Op: "delete tag", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: "delete tag", Err: err}
	}
	if n == 0 {
		return models.ErrTagNotFound
	}

	return nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags() ([]models.Tag, error) {
	rows, err := s.db.Query(`
        SELECT id, name, color, created_at
        FROM tags
        ORDER BY name`)
	if err != nil {
		return nil, &models.StorageError{Op: "list tags", Err: err}
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, &models.StorageError{Op: "scan tag", Err: err}
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// TagDocument links a tag to a document. Linking twice is a no-op.
func (s *Store) TagDocument(documentID, tagID string) error {
	_, err := s.db.Exec(`
        INSERT OR IGNORE INTO document_tags (document_id, tag_id)
        VALUES (?, ?)`, documentID, tagID)
	if err != nil {
		return &models.StorageError{Op: "tag document", Err: err}
	}
	return nil
}

// UntagDocument removes a tag link from a document.
func (s *Store) UntagDocument(documentID, tagID string) error {
	_, err := s.db.Exec(`
        DELETE FROM document_tags
        WHERE document_id = ? AND tag_id = ?`, documentID, tagID)
	if err != nil {
		return &models.StorageError{Op: "untag document", Err: err}
	}
	return nil
}

// TagsForDocument returns a document's tags ordered by name.
func (s *Store) TagsForDocument(documentID string) ([]models.Tag, error) {
	rows, err := s.db.Query(`
        SELECT t.id, t.name, t.color, t.created_at
        FROM tags t
        JOIN document_tags dt ON dt.tag_id = t.id
        WHERE dt.document_id = ?
        ORDER BY t.name`, documentID)
	if err != nil {
		return nil, &models.StorageError{Op: "query document tags", Err: err}
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, &models.StorageError{Op: "scan tag", Err: err}
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// FindTagByName looks up a tag by its unique name.
func (s *Store) FindTagByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.QueryRow(`
        SELECT id, name, color, created_at
        FROM tags
        WHERE name = ?`, name).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTagNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "find tag", Err: err}
	}
	return &tag, nil
}
