package models

import (
	"errors"
	"fmt"
	"time"
)

// OCRStatus tracks text extraction progress for a document.
type OCRStatus string

const (
	OCRPending   OCRStatus = "pending"
	OCRCompleted OCRStatus = "completed"
	OCRFailed    OCRStatus = "failed"
)

// Valid reports whether the status is one of the known values.
func (s OCRStatus) Valid() bool {
	switch s {
	case OCRPending, OCRCompleted, OCRFailed:
		return true
	}
	return false
}

// Document is a scanned document's metadata record. The extracted text is
// produced by the OCR pipeline and may be absent.
type Document struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	FilePath         string    `json:"file_path"`
	ThumbnailPath    string    `json:"thumbnail_path"`
	OriginalFileName string    `json:"original_file_name"`
	PageCount        int       `json:"page_count"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	OCRText          *string   `json:"ocr_text,omitempty"`
	OCRStatus        OCRStatus `json:"ocr_status"`
	FolderID         *string   `json:"folder_id,omitempty"`
	IsFavorite       bool      `json:"is_favorite"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks document invariants before persistence.
func (d *Document) Validate() error {
	if d.Title == "" {
		return errors.New("document title is required")
	}
	if d.PageCount < 1 {
		return fmt.Errorf("page count must be at least 1, got %d", d.PageCount)
	}
	if d.OCRStatus != "" && !d.OCRStatus.Valid() {
		return fmt.Errorf("invalid ocr status: %s", d.OCRStatus)
	}
	return nil
}

// DocumentPage is a single page image belonging to a document. Its
// lifecycle is bound to the owning document: created with it, removed by
// cascade when it is deleted.
type DocumentPage struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	PageNumber int    `json:"page_number"` // 1-based
	FilePath   string `json:"file_path"`
}

// Validate checks page invariants.
func (p *DocumentPage) Validate() error {
	if p.PageNumber < 1 {
		return fmt.Errorf("page number must be at least 1, got %d", p.PageNumber)
	}
	if p.FilePath == "" {
		return errors.New("page file path is required")
	}
	return nil
}

// SearchFilters narrows a search result set.
type SearchFilters struct {
	FavoritesOnly bool    `json:"favorites_only"`
	FolderID      *string `json:"folder_id,omitempty"`
	Limit         int     `json:"limit"` // 0 = unlimited
}
