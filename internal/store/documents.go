package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

const documentColumns = `id, title, description, file_path, thumbnail_path,
    original_file_name, page_count, file_size, mime_type, ocr_text,
    ocr_status, folder_id, is_favorite, created_at, updated_at`

// CreateDocument inserts a document together with its pages in one
// transaction. Pages exist only as part of their document.
func (s *Store) CreateDocument(doc *models.Document, pages []models.DocumentPage) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	for i := range pages {
		if err := pages[i].Validate(); err != nil {
			return fmt.Errorf("validate page %d: %w", i+1, err)
		}
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.OCRStatus == "" {
		doc.OCRStatus = models.OCRPending
	}
	ts := now()
	doc.CreatedAt = ts
	doc.UpdatedAt = ts

	err := s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
            INSERT INTO documents (`+documentColumns+`)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, doc.Title, doc.Description, doc.FilePath, doc.ThumbnailPath,
			doc.OriginalFileName, doc.PageCount, doc.FileSize, doc.MimeType,
			doc.OCRText, string(doc.OCRStatus), doc.FolderID, doc.IsFavorite,
			doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		stmt, err := tx.Prepare(`
            INSERT INTO document_pages (id, document_id, page_number, file_path)
            VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare page insert: %w", err)
		}
		defer stmt.Close()

		for i := range pages {
			if pages[i].ID == "" {
				pages[i].ID = uuid.NewString()
			}
			pages[i].DocumentID = doc.ID
			if _, err := stmt.Exec(pages[i].ID, pages[i].DocumentID,
				pages[i].PageNumber, pages[i].FilePath); err != nil {
				return fmt.Errorf("insert page %d: %w", pages[i].PageNumber, err)
			}
		}

		return nil
	})
	if err != nil {
		return &models.StorageError{Op: "create document", Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"document_id": doc.ID,
		"pages":       len(pages),
	}).Debug("Document created")

	return nil
}

// GetDocument loads a document by id.
func (s *Store) GetDocument(id string) (*models.Document, error) {
	row := s.db.QueryRow(`
        SELECT `+documentColumns+`
        FROM documents
        WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get document", Err: err}
	}
	return doc, nil
}

// GetDocumentPages loads a document's pages in page order.
func (s *Store) GetDocumentPages(documentID string) ([]models.DocumentPage, error) {
	rows, err := s.db.Query(`
        SELECT id, document_id, page_number, file_path
        FROM document_pages
        WHERE document_id = ?
        ORDER BY page_number`, documentID)
	if err != nil {
		return nil, &models.StorageError{Op: "query pages", Err: err}
	}
	defer rows.Close()

	var pages []models.DocumentPage
	for rows.Next() {
		var p models.DocumentPage
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.PageNumber, &p.FilePath); err != nil {
			return nil, &models.StorageError{Op: "scan page", Err: err}
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// UpdateDocument updates all mutable fields of a document. The shadow
// index follows via triggers in the same transaction.
func (s *Store) UpdateDocument(doc *models.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	doc.UpdatedAt = now()

	res, err := s.db.Exec(`
        UPDATE documents SET
            title = ?, description = ?, file_path = ?, thumbnail_path = ?,
            original_file_name = ?, page_count = ?, file_size = ?,
            mime_type = ?, ocr_text = ?, ocr_status = ?, folder_id = ?,
            is_favorite = ?, updated_at = ?
        WHERE id = ?`,
		doc.Title, doc.Description, doc.FilePath, doc.ThumbnailPath,
		doc.OriginalFileName, doc.PageCount, doc.FileSize, doc.MimeType,
		doc.OCRText, string(doc.OCRStatus), doc.FolderID, doc.IsFavorite,
		doc.UpdatedAt, doc.ID)
	if err != nil {
		return &models.StorageError{Op: "update document", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: "update document", Err: err}
	}
	if n == 0 {
		return models.ErrDocumentNotFound
	}

	return nil
}

// DeleteDocument removes a document. Pages and tag links go with it via
// the declared cascades, and the delete trigger clears the shadow index.
func (s *Store) DeleteDocument(id string) error {
	res, err := s.db.Exec("DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return &models.StorageError{Op: "delete document", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &models.StorageError{Op: "delete document", Err: err}
	}
	if n == 0 {
		return models.ErrDocumentNotFound
	}

	s.logger.WithField("document_id", id).Debug("Document deleted")
	return nil
}

// ListDocuments returns documents matching the filters, most recently
// updated first.
func (s *Store) ListDocuments(filters models.SearchFilters) ([]models.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	where, args := filterClauses("", filters)
	if len(where) > 0 {
		query += " WHERE " + where
	}
	query += " ORDER BY updated_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &models.StorageError{Op: "list documents", Err: err}
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var ocrText sql.NullString
	var folderID sql.NullString
	var status string

	err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.FilePath,
		&doc.ThumbnailPath, &doc.OriginalFileName, &doc.PageCount,
		&doc.FileSize, &doc.MimeType, &ocrText, &status, &folderID,
		&doc.IsFavorite, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	doc.OCRStatus = models.OCRStatus(status)
	if ocrText.Valid {
		doc.OCRText = &ocrText.String
	}
	if folderID.Valid {
		doc.FolderID = &folderID.String
	}

	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]models.Document, error) {
	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, &models.StorageError{Op: "scan document", Err: err}
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// filterClauses builds WHERE fragments for the favorite/folder filters.
// prefix qualifies the documents table when joined (e.g. "d.").
func filterClauses(prefix string, filters models.SearchFilters) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filters.FavoritesOnly {
		clauses = append(clauses, prefix+"is_favorite = 1")
	}
	if filters.FolderID != nil {
		clauses = append(clauses, prefix+"folder_id = ?")
		args = append(args, *filters.FolderID)
	}

	switch len(clauses) {
	case 0:
		return "", args
	case 1:
		return clauses[0], args
	default:
		return clauses[0] + " AND " + clauses[1], args
	}
}
