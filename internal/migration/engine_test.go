package migration_test

import (
	"crypto/rand"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panplumousse-star/AIScan-sub002/internal/config"
	"github.com/panplumousse-star/AIScan-sub002/internal/events"
	"github.com/panplumousse-star/AIScan-sub002/internal/migration"
	"github.com/panplumousse-star/AIScan-sub002/internal/models"
	"github.com/panplumousse-star/AIScan-sub002/internal/store"
)

// legacySchemaSQL is the unencrypted schema as the pre-encryption app
// wrote it: same tables, no integrity checks.
const legacySchemaSQL = `
CREATE TABLE folders (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    parent_id TEXT,
    color TEXT NOT NULL DEFAULT '',
    icon TEXT NOT NULL DEFAULT '',
    is_favorite INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE TABLE documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    file_path TEXT NOT NULL DEFAULT '',
    thumbnail_path TEXT NOT NULL DEFAULT '',
    original_file_name TEXT NOT NULL DEFAULT '',
    page_count INTEGER NOT NULL DEFAULT 1,
    file_size INTEGER NOT NULL DEFAULT 0,
    mime_type TEXT NOT NULL DEFAULT '',
    ocr_text TEXT,
    ocr_status TEXT NOT NULL DEFAULT 'pending',
    folder_id TEXT,
    is_favorite INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE TABLE document_pages (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    page_number INTEGER NOT NULL,
    file_path TEXT NOT NULL
);
CREATE TABLE tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE document_tags (
    document_id TEXT NOT NULL,
    tag_id TEXT NOT NULL,
    PRIMARY KEY (document_id, tag_id)
);
CREATE TABLE signatures (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    file_path TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE search_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    query TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    result_count INTEGER NOT NULL DEFAULT 0
);
`

func testLogger() *events.Logger {
	return events.NewTestLogger(events.ErrorLevel, "text", io.Discard)
}

func testMasterKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func newEngine(t *testing.T, storePath string, key []byte) *migration.Engine {
	t.Helper()
	cfg := config.MigrationConfig{BatchSize: 200, BackupSuffix: ".backup"}
	return migration.NewEngine(storePath, key, cfg, testLogger())
}

// writeLegacyStore creates an unencrypted store with the given seed
// statements and returns the number of rows inserted.
func writeLegacyStore(t *testing.T, path string, seed []string) int64 {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(legacySchemaSQL)
	require.NoError(t, err)

	for _, stmt := range seed {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "seed: %s", stmt)
	}

	return int64(len(seed))
}

func defaultSeed() []string {
	ts := "'2026-01-02 15:04:05'"
	return []string{
		`INSERT INTO folders VALUES ('f1', 'Taxes', NULL, '', '', 0, ` + ts + `, ` + ts + `)`,
		`INSERT INTO documents VALUES ('d1', 'Return 2025', 'federal', 'files/d1.pdf', '', 'return.pdf',
            2, 1024, 'application/pdf', 'adjusted gross income', 'completed', 'f1', 1, ` + ts + `, ` + ts + `)`,
		`INSERT INTO documents VALUES ('d2', 'Receipt', '', 'files/d2.jpg', '', '',
            1, 2048, 'image/jpeg', NULL, 'pending', NULL, 0, ` + ts + `, ` + ts + `)`,
		`INSERT INTO document_pages VALUES ('p1', 'd1', 1, 'files/d1-1.png')`,
		`INSERT INTO document_pages VALUES ('p2', 'd1', 2, 'files/d1-2.png')`,
		`INSERT INTO tags VALUES ('t1', 'finance', '', ` + ts + `)`,
		`INSERT INTO document_tags VALUES ('d1', 't1')`,
		`INSERT INTO signatures VALUES ('s1', 'primary', 'files/sig.png', ` + ts + `)`,
		`INSERT INTO search_history (query, timestamp, result_count) VALUES ('return', ` + ts + `, 1)`,
	}
}

func TestNeedsMigration(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		engine := newEngine(t, filepath.Join(t.TempDir(), "documents.db"), nil)

		needed, err := engine.NeedsMigration()
		require.NoError(t, err)
		assert.False(t, needed)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "documents.db")
		require.NoError(t, os.WriteFile(path, nil, 0600))

		needed, err := newEngine(t, path, nil).NeedsMigration()
		require.NoError(t, err)
		assert.False(t, needed)
	})

	t.Run("plaintext store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "documents.db")
		writeLegacyStore(t, path, nil)

		needed, err := newEngine(t, path, nil).NeedsMigration()
		require.NoError(t, err)
		assert.True(t, needed)
	})

	t.Run("encrypted store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "documents.db")
		s, err := store.Open(path, testMasterKey(t), testLogger())
		require.NoError(t, err)
		require.NoError(t, s.Close())

		needed, err := newEngine(t, path, nil).NeedsMigration()
		require.NoError(t, err)
		assert.False(t, needed)
	})
}

func TestMigrateNotNeeded(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "documents.db"), testMasterKey(t))

	result := engine.MigrateToEncrypted()

	assert.True(t, result.Success)
	assert.Equal(t, migration.PhaseNotNeeded, result.Phase)
	assert.Zero(t, result.RowsMigrated)
	assert.Empty(t, result.BackupPath)
}

func TestMigrateToEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	key := testMasterKey(t)

	wantRows := writeLegacyStore(t, path, defaultSeed())
	legacyBytes, err := os.ReadFile(path)
	require.NoError(t, err)

	engine := newEngine(t, path, key)
	result := engine.MigrateToEncrypted()

	require.True(t, result.Success, "migration error: %v", result.Err)
	assert.Equal(t, migration.PhaseCommitted, result.Phase)
	assert.Equal(t, wantRows, result.RowsMigrated)

	// Backup is the legacy file, byte for byte.
	backup, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, legacyBytes, backup)

	// The store path now holds encrypted pages.
	needed, err := engine.NeedsMigration()
	require.NoError(t, err)
	assert.False(t, needed)

	s, err := store.Open(path, key, testLogger())
	require.NoError(t, err)
	defer s.Close()

	counts, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["documents"])
	assert.Equal(t, int64(2), counts["document_pages"])
	assert.Equal(t, int64(1), counts["folders"])
	assert.Equal(t, int64(1), counts["tags"])
	assert.Equal(t, int64(1), counts["document_tags"])
	assert.Equal(t, int64(1), counts["signatures"])
	assert.Equal(t, int64(1), counts["search_history"])

	doc, err := s.GetDocument("d1")
	require.NoError(t, err)
	assert.Equal(t, "Return 2025", doc.Title)
	require.NotNil(t, doc.OCRText)
	assert.Equal(t, "adjusted gross income", *doc.OCRText)

	// The search index was rebuilt from the copied rows.
	if s.Tier() != store.TierNone {
		docs, err := s.Search("gross", models.SearchFilters{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "d1", docs[0].ID)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	key := testMasterKey(t)

	writeLegacyStore(t, path, defaultSeed())

	engine := newEngine(t, path, key)
	first := engine.MigrateToEncrypted()
	require.True(t, first.Success, "migration error: %v", first.Err)

	second := engine.MigrateToEncrypted()
	assert.True(t, second.Success)
	assert.Equal(t, migration.PhaseNotNeeded, second.Phase)
	assert.Zero(t, second.RowsMigrated)
}

func TestMigrateRollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	key := testMasterKey(t)

	// A zero page count passes the lax legacy schema but violates the
	// encrypted schema, failing the copy mid-migration.
	seed := append(defaultSeed(),
		`INSERT INTO documents VALUES ('bad', 'Corrupt', '', '', '', '',
            0, 0, '', NULL, 'pending', NULL, 0, '2026-01-02 15:04:05', '2026-01-02 15:04:05')`)
	writeLegacyStore(t, path, seed)
	legacyBytes, err := os.ReadFile(path)
	require.NoError(t, err)

	engine := newEngine(t, path, key)
	result := engine.MigrateToEncrypted()

	assert.False(t, result.Success)
	assert.Equal(t, migration.PhaseRolledBack, result.Phase)

	var migErr *models.MigrationError
	require.ErrorAs(t, result.Err, &migErr)
	assert.Equal(t, "documents", migErr.Table)

	// Legacy store untouched and still migratable.
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyBytes, got)

	needed, err := engine.NeedsMigration()
	require.NoError(t, err)
	assert.True(t, needed)

	// Backup preserved for manual recovery, scratch copy cleaned up.
	_, err = os.Stat(engine.BackupPath())
	assert.NoError(t, err)
	_, err = os.Stat(path + ".migrating")
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	key := testMasterKey(t)

	writeLegacyStore(t, path, defaultSeed())

	engine := newEngine(t, path, key)
	result := engine.MigrateToEncrypted()
	require.True(t, result.Success, "migration error: %v", result.Err)

	_, err := os.Stat(engine.BackupPath())
	require.NoError(t, err)

	require.NoError(t, engine.DeleteBackup())

	_, err = os.Stat(engine.BackupPath())
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, engine.DeleteBackup())
}
