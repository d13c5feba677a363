package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

const folderColumns = "id, name, parent_id, color, icon, is_favorite, created_at, updated_at"

// CreateFolder inserts a folder.
func (s *Store) CreateFolder(folder *models.Folder) error {
	if err := folder.Validate(); err != nil {
		return fmt.Errorf("validate folder: %w", err)
	}

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	ts := now()
	folder.CreatedAt = ts
	folder.UpdatedAt = ts

	_, err := s.db.Exec(`
        INSERT INTO folders (`+folderColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.Name, folder.ParentID, folder.Color, folder.Icon,
		folder.IsFavorite, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return &models.StorageError{Op: "create folder", Err: err}
	}

	return nil
}

// GetFolder loads a folder by id.
func (s *Store) GetFolder(id string) (*models.Folder, error) {
	row := s.db.QueryRow(`
        SELECT `+folderColumns+`
        FROM folders
        WHERE id = ?`, id)

	folder, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrFolderNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get folder", Err: err}
	}
	return folder, nil
}

// UpdateFolder updates a folder, rejecting parent assignments that would
// close a cycle in the folder forest.
func (s *Store) UpdateFolder(folder *models.Folder) error {
	if err := folder.Validate(); err != nil {
		return fmt.Errorf("validate folder: %w", err)
	}

	if folder.ParentID != nil {
		ok, err := s.wouldCycle(folder.ID, *folder.ParentID)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("folder %s: parent %s would create a cycle", folder.ID, *folder.ParentID)
		}
	}

	folder.UpdatedAt = now()

	res, err := s.db.Exec(`
        UPDATE folders SET
            name = ?, parent_id = ?, color = ?, icon = ?, is_favorite = ?, updated_at = ?
        WHERE id = ?`,
		folder.Name, folder.ParentID, folder.Color, folder.Icon,
		folder.IsFavorite, folder.UpdatedAt, folder.ID)
	if err != nil {
		return &models.StorageError{Op: "update folder", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: "update folder", Err: err}
	}
	if n == 0 {
		return models.ErrFolderNotFound
	}

	return nil
}

// DeleteFolder removes a folder. Documents inside it and child folders
// are kept, with their references nulled by the engine.
func (s *Store) DeleteFolder(id string) error {
	res, err := s.db.Exec("DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return &models.StorageError{Op: "delete folder", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: "delete folder", Err: err}
	}
	if n == 0 {
		return models.ErrFolderNotFound
	}

	return nil
}

// ListFolders returns all folders ordered by name.
func (s *Store) ListFolders() ([]models.Folder, error) {
	rows, err := s.db.Query(`
        SELECT ` + folderColumns + `
        FROM folders
        ORDER BY name`)
	if err != nil {
		return nil, &models.StorageError{Op: "list folders", Err: err}
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, &models.StorageError{Op: "scan folder", Err: err}
		}
		folders = append(folders, *folder)
	}

	return folders, rows.Err()
}

// wouldCycle walks up from candidate parent to the roots, checking
// whether folderID is among its ancestors.
func (s *Store) wouldCycle(folderID, parentID string) (bool, error) {
	current := parentID
	for current != "" {
		if current == folderID {
			return true, nil
		}

		var next sql.NullString
		err := s.db.QueryRow("SELECT parent_id FROM folders WHERE id = ?", current).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return false, models.ErrFolderNotFound
		}
		if err != nil {
			return false, &models.StorageError{Op: "walk folder ancestry", Err: err}
		}

		if !next.Valid {
			return false, nil
		}
		current = next.String
	}
	return false, nil
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	var parentID sql.NullString

	err := row.Scan(&folder.ID, &folder.Name, &parentID, &folder.Color,
		&folder.Icon, &folder.IsFavorite, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		folder.ParentID = &parentID.String
	}

	return &folder, nil
}
