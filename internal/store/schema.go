package store

import (
	"database/sql"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

const currentSchemaVersion = 1

// EntityTables returns the entity table names in dependency order.
// Copy/verify operations walk tables in exactly this order so foreign
// keys resolve.
func EntityTables() []string {
	tables := make([]string, len(entityTables))
	copy(tables, entityTables)
	return tables
}

var entityTables = []string{
	"folders",
	"documents",
	"document_pages",
	"tags",
	"document_tags",
	"signatures",
	"search_history",
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    parent_id TEXT REFERENCES folders(id) ON DELETE SET NULL,
    color TEXT NOT NULL DEFAULT '',
    icon TEXT NOT NULL DEFAULT '',
    is_favorite INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    file_path TEXT NOT NULL DEFAULT '',
    thumbnail_path TEXT NOT NULL DEFAULT '',
    original_file_name TEXT NOT NULL DEFAULT '',
    page_count INTEGER NOT NULL DEFAULT 1 CHECK (page_count >= 1),
    file_size INTEGER NOT NULL DEFAULT 0,
    mime_type TEXT NOT NULL DEFAULT '',
    ocr_text TEXT,
    ocr_status TEXT NOT NULL DEFAULT 'pending',
    folder_id TEXT REFERENCES folders(id) ON DELETE SET NULL,
    is_favorite INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents(folder_id);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);

CREATE TABLE IF NOT EXISTS document_pages (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    page_number INTEGER NOT NULL CHECK (page_number >= 1),
    file_path TEXT NOT NULL,
    UNIQUE (document_id, page_number)
);

CREATE INDEX IF NOT EXISTS idx_document_pages_document ON document_pages(document_id);

CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS document_tags (
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (document_id, tag_id)
);

CREATE TABLE IF NOT EXISTS signatures (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS search_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    query TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    result_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schema_info (
    version INTEGER PRIMARY KEY
);

INSERT OR IGNORE INTO schema_info (version) VALUES (?);
`

// Ranked tier: FTS5 external-content index over the searchable document
// fields, linked to documents by rowid. Application code never writes to
// it; the trigger triple below keeps it in sync.
const ftsRankedSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
    title,
    description,
    ocr_text,
    content='documents',
    content_rowid='rowid'
);
`

const ftsRankedTriggersSQL = `
CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(rowid, title, description, ocr_text)
    VALUES (new.rowid, new.title, new.description, coalesce(new.ocr_text, ''));
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, title, description, ocr_text)
    VALUES ('delete', old.rowid, old.title, old.description, coalesce(old.ocr_text, ''));
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, title, description, ocr_text)
    VALUES ('delete', old.rowid, old.title, old.description, coalesce(old.ocr_text, ''));
    INSERT INTO documents_fts(rowid, title, description, ocr_text)
    VALUES (new.rowid, new.title, new.description, coalesce(new.ocr_text, ''));
END;
`

// Basic tier: FTS4 index keyed by docid, no built-in ranking.
const ftsBasicSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts4(
    title,
    description,
    ocr_text
);
`

const ftsBasicTriggersSQL = `
CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(docid, title, description, ocr_text)
    VALUES (new.rowid, new.title, new.description, coalesce(new.ocr_text, ''));
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    DELETE FROM documents_fts WHERE docid = old.rowid;
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    DELETE FROM documents_fts WHERE docid = old.rowid;
    INSERT INTO documents_fts(docid, title, description, ocr_text)
    VALUES (new.rowid, new.title, new.description, coalesce(new.ocr_text, ''));
END;
`

// installSearch probes the capability ladder: ranked, then basic, then
// none. The chosen tier lives on the handle and is re-detected on every
// open, never assumed stable across installs.
func (s *Store) installSearch(maxTier SearchTier) {
	s.tier = TierNone

	if maxTier >= TierRanked {
		if err := s.execSearchDDL(ftsRankedSQL, ftsRankedTriggersSQL); err == nil {
			s.tier = TierRanked
			return
		} else {
			s.logger.WithError(err).Debug("Ranked full-text index unavailable")
		}
	}

	if maxTier >= TierBasic {
		if err := s.execSearchDDL(ftsBasicSQL, ftsBasicTriggersSQL); err == nil {
			s.tier = TierBasic
			return
		} else {
			s.logger.WithError(err).Debug("Basic full-text index unavailable")
		}
	}

	s.logger.Warn("No full-text index available, search falls back to substring scan")
}

func (s *Store) execSearchDDL(tableSQL, triggersSQL string) error {
	if _, err := s.db.Exec(tableSQL); err != nil {
		return err
	}
	if _, err := s.db.Exec(triggersSQL); err != nil {
		return err
	}
	return nil
}

// RebuildIndex re-derives the full shadow index from document rows. Used
// after bulk changes so completeness does not rest on triggers alone.
// No-op when no index exists.
func (s *Store) RebuildIndex() error {
	switch s.tier {
	case TierRanked:
		if _, err := s.db.Exec(`INSERT INTO documents_fts(documents_fts) VALUES ('rebuild')`); err != nil {
			return &models.StorageError{Op: "rebuild index", Err: err}
		}
	case TierBasic:
		err := s.withTx(func(tx *sql.Tx) error {
			if _, err := tx.Exec("DELETE FROM documents_fts"); err != nil {
				return err
			}
			_, err := tx.Exec(`
                INSERT INTO documents_fts(docid, title, description, ocr_text)
                SELECT rowid, title, description, coalesce(ocr_text, '')
                FROM documents`)
			return err
		})
		if err != nil {
			return &models.StorageError{Op: "rebuild index", Err: err}
		}
		if _, err := s.db.Exec(`INSERT INTO documents_fts(documents_fts) VALUES ('optimize')`); err != nil {
			return &models.StorageError{Op: "optimize index", Err: err}
		}
	}
	return nil
}
