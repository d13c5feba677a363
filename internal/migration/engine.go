// Package migration converts a legacy unencrypted document store into a
// fresh encrypted one, or leaves the legacy store untouched if anything
// goes wrong.
package migration

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/panplumousse-star/AIScan-sub002/internal/config"
	"github.com/panplumousse-star/AIScan-sub002/internal/events"
	"github.com/panplumousse-star/AIScan-sub002/internal/models"
	"github.com/panplumousse-star/AIScan-sub002/internal/store"
)

// Phase names the migration state machine position a result was produced
// in.
type Phase string

const (
	PhaseNotNeeded  Phase = "not_needed"
	PhaseBackingUp  Phase = "backing_up"
	PhaseCopying    Phase = "copying"
	PhaseVerifying  Phase = "verifying"
	PhaseCommitted  Phase = "committed"
	PhaseRolledBack Phase = "rolled_back"
)

// Result reports the outcome of a migration run.
type Result struct {
	Success      bool   `json:"success"`
	RowsMigrated int64  `json:"rows_migrated"`
	Err          error  `json:"-"`
	BackupPath   string `json:"backup_path,omitempty"`
	Phase        Phase  `json:"phase"`
}

// sqliteMagic is the plaintext page-header prefix; encrypted pages never
// carry it.
var sqliteMagic = []byte("SQLite format 3\x00")

// Engine runs the one-shot startup migration. It is synchronous and must
// not be invoked concurrently; the caller guards re-entrancy.
type Engine struct {
	storePath    string
	masterKey    []byte
	batchSize    int
	backupSuffix string
	logger       *events.Logger
}

// NewEngine creates a migration engine for the store at storePath.
func NewEngine(storePath string, masterKey []byte, cfg config.MigrationConfig, logger *events.Logger) *Engine {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}
	suffix := cfg.BackupSuffix
	if suffix == "" {
		suffix = ".backup"
	}

	return &Engine{
		storePath:    storePath,
		masterKey:    masterKey,
		batchSize:    batch,
		backupSuffix: suffix,
		logger:       logger.WithField("component", "migration"),
	}
}

// BackupPath returns where the legacy byte-copy is placed. Its presence
// is the sole signal of an in-flight or abandoned migration.
func (e *Engine) BackupPath() string {
	return e.storePath + e.backupSuffix
}

// NeedsMigration reports whether a legacy unencrypted store sits at the
// store path. After a committed migration the path holds encrypted pages,
// so the check is idempotent.
func (e *Engine) NeedsMigration() (bool, error) {
	f, err := os.Open(e.storePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, header)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// Empty or truncated file: nothing to migrate.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read store header: %w", err)
	}

	return bytes.Equal(header[:n], sqliteMagic), nil
}

// MigrateToEncrypted runs the full state machine:
// BackingUp -> Copying -> Verifying -> Committed, or RolledBack on any
// failure. The legacy store is only ever replaced atomically after
// verification passes; the backup survives either way.
func (e *Engine) MigrateToEncrypted() Result {
	needed, err := e.NeedsMigration()
	if err != nil {
		return Result{Err: &models.MigrationError{Phase: string(PhaseBackingUp), Err: err}, Phase: PhaseRolledBack}
	}
	if !needed {
		e.logger.Debug("No legacy store present, migration not needed")
		return Result{Success: true, Phase: PhaseNotNeeded}
	}

	backupPath := e.BackupPath()
	e.logger.WithField("backup", backupPath).Info("Backing up legacy store")

	if err := copyFileVerified(e.storePath, backupPath); err != nil {
		// An incomplete backup is worse than none.
		_ = os.Remove(backupPath)
		return Result{
			Err:   &models.MigrationError{Phase: string(PhaseBackingUp), Err: err},
			Phase: PhaseRolledBack,
		}
	}

	rows, err := e.copyAndVerify()
	if err != nil {
		e.rollback()
		e.logger.WithError(err).Warn("Migration failed, legacy store left in place")
		return Result{
			Err:        err,
			BackupPath: backupPath,
			Phase:      PhaseRolledBack,
		}
	}

	e.logger.WithField("rows", rows).Info("Migration committed")
	return Result{
		Success:      true,
		RowsMigrated: rows,
		BackupPath:   backupPath,
		Phase:        PhaseCommitted,
	}
}

// copyAndVerify covers the Copying and Verifying phases plus the atomic
// commit. Any returned error means the caller must roll back.
func (e *Engine) copyAndVerify() (int64, error) {
	tmpPath := e.storePath + ".migrating"
	_ = os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	legacy, err := sql.Open("sqlite3", "file:"+e.storePath+"?mode=ro")
	if err != nil {
		return 0, &models.MigrationError{Phase: string(PhaseCopying), Err: err}
	}
	defer legacy.Close()

	dest, err := store.Open(tmpPath, e.masterKey, e.logger)
	if err != nil {
		return 0, &models.MigrationError{Phase: string(PhaseCopying), Err: err}
	}
	defer dest.Close()

	var total int64
	for _, table := range store.EntityTables() {
		n, err := e.copyTable(legacy, dest.DB(), table)
		if err != nil {
			return 0, &models.MigrationError{Phase: string(PhaseCopying), Table: table, Err: err}
		}
		total += n
		e.logger.WithFields(map[string]interface{}{
			"table": table,
			"rows":  n,
		}).Debug("Table copied")
	}

	// The search index is derived state: never copied, always rebuilt
	// from the document rows that just arrived.
	if err := dest.RebuildIndex(); err != nil {
		return 0, &models.MigrationError{Phase: string(PhaseCopying), Table: "documents_fts", Err: err}
	}

	for _, table := range store.EntityTables() {
		if err := CompareTable(legacy, dest.DB(), table, tableOrder[table]); err != nil {
			return 0, &models.MigrationError{Phase: string(PhaseVerifying), Table: table, Err: err}
		}
	}

	if err := dest.Close(); err != nil {
		return 0, &models.MigrationError{Phase: string(PhaseVerifying), Err: err}
	}
	if err := legacy.Close(); err != nil {
		return 0, &models.MigrationError{Phase: string(PhaseVerifying), Err: err}
	}

	if err := os.Rename(tmpPath, e.storePath); err != nil {
		return 0, &models.MigrationError{Phase: string(PhaseCommitted), Err: err}
	}

	return total, nil
}

// copyTable streams every row of one table inside a single transaction,
// inserting through one prepared statement.
func (e *Engine) copyTable(src *sql.DB, dst *sql.DB, table string) (int64, error) {
	rows, err := src.Query("SELECT * FROM " + table + " ORDER BY rowid")
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("source columns: %w", err)
	}

	tx, err := dst.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var count int64
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return 0, fmt.Errorf("scan row %d: %w", count+1, err)
		}
		if _, err := stmt.Exec(values...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", count+1, err)
		}
		count++
		if count%int64(e.batchSize) == 0 {
			e.logger.WithFields(map[string]interface{}{
				"table": table,
				"rows":  count,
			}).Debug("Copy progress")
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate source: %w", err)
	}

	return count, tx.Commit()
}

// rollback restores the legacy store from its backup if the store file
// was replaced or damaged. The backup itself is always preserved.
func (e *Engine) rollback() {
	needed, err := e.NeedsMigration()
	if err == nil && needed {
		// Legacy file still intact; nothing to restore.
		return
	}

	if err := copyFileVerified(e.BackupPath(), e.storePath); err != nil {
		e.logger.WithError(err).Error("Restore from backup failed, backup left on disk")
	}
}

// DeleteBackup removes the backup file. Deliberately a separate, explicit
// call: callers delete only after confirming the new store is usable.
func (e *Engine) DeleteBackup() error {
	err := os.Remove(e.BackupPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

// copyFileVerified copies src to dst byte-for-byte and verifies the
// sizes match.
func copyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}

	written, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return fmt.Errorf("copy bytes: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if written != info.Size() {
		return fmt.Errorf("size mismatch: copied %d of %d bytes", written, info.Size())
	}

	return nil
}
