// Package store owns the encrypted relational document store: schema,
// invariants, and full-text search across the engine's capability tiers.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/panplumousse-star/AIScan-sub002/internal/crypto"
	"github.com/panplumousse-star/AIScan-sub002/internal/events"
	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

// SearchTier is the level of native full-text capability the engine
// exposed when the store was opened.
type SearchTier int

const (
	TierNone SearchTier = iota
	TierBasic
	TierRanked
)

func (t SearchTier) String() string {
	switch t {
	case TierRanked:
		return "ranked"
	case TierBasic:
		return "basic"
	default:
		return "none"
	}
}

// Store is an open handle on the encrypted document store. The engine
// enforces single-writer, multiple-reader semantics per handle; open one
// handle per process.
type Store struct {
	db     *sql.DB
	path   string
	tier   SearchTier
	logger *events.Logger
}

type options struct {
	maxTier SearchTier
}

// Option configures Open.
type Option func(*options)

// WithMaxTier caps the search capability ladder. Intended for fresh
// stores; the shadow index shape is fixed by the first successful probe.
func WithMaxTier(tier SearchTier) Option {
	return func(o *options) {
		o.maxTier = tier
	}
}

// Open opens (creating schema if absent) the store at path, with on-disk
// pages encrypted under a passphrase derived from masterKey. Returns a
// StorageError if the file exists but cannot be read with that key.
func Open(path string, masterKey []byte, logger *events.Logger, opts ...Option) (*Store, error) {
	o := options{maxTier: TierRanked}
	for _, opt := range opts {
		opt(&o)
	}

	passphrase, err := crypto.NewProvider().DeriveStorePassphrase(masterKey)
	if err != nil {
		return nil, fmt.Errorf("derive store passphrase: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_journal=WAL&_timeout=5000&_foreign_keys=on",
		path, passphrase)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &models.StorageError{Op: "open", Err: err}
	}

	// The page cipher surfaces a wrong passphrase as an unreadable header
	// on the first real read.
	var n int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return nil, &models.StorageError{Op: "open", Err: err}
	}

	s := &Store{
		db:     db,
		path:   path,
		logger: logger.WithField("component", "store"),
	}

	if err := s.initialize(o.maxTier); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.WithField("tier", s.tier.String()).Debug("Store opened")
	return s, nil
}

// initialize creates tables and probes the search capability ladder.
func (s *Store) initialize(maxTier SearchTier) error {
	if _, err := s.db.Exec(schemaSQL, currentSchemaVersion); err != nil {
		return &models.StorageError{Op: "create schema", Err: err}
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return &models.StorageError{Op: "enable foreign keys", Err: err}
	}

	s.installSearch(maxTier)
	return nil
}

// Tier reports the search capability selected when this handle was opened.
func (s *Store) Tier() SearchTier {
	return s.tier
}

// Path returns the store's database file path.
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying handle for the migration engine's verifier.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Counts returns per-table row counts for every entity table.
func (s *Store) Counts() (map[string]int64, error) {
	counts := make(map[string]int64, len(entityTables))
	for _, table := range entityTables {
		var n int64
		if err := s.db.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
			return nil, &models.StorageError{Op: "count " + table, Err: err}
		}
		counts[table] = n
	}
	return counts, nil
}

// Close closes the database. The close boundary defines transaction
// durability for the handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func now() time.Time {
	return time.Now().UTC()
}
