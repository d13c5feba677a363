package models

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrStoreClosed      = errors.New("store is closed")
)

// IntegrityError reports an authentication tag mismatch: the blob was
// tampered with or corrupted. It always aborts the decrypt.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed: %s", e.Reason)
}

// EncryptionError reports malformed cipher input: empty buffer, undersized
// blob, or bad padding after a successful tag check.
type EncryptionError struct {
	Reason string
	Err    error
}

func (e *EncryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encryption error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("encryption error: %s", e.Reason)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// StorageError reports an engine-level failure: wrong passphrase, I/O
// failure, or schema creation failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MigrationError reports a migration failure with enough context to
// identify the failing phase and table.
type MigrationError struct {
	Phase string
	Table string
	Err   error
}

func (e *MigrationError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("migration %s: table %s: %v", e.Phase, e.Table, e.Err)
	}
	return fmt.Sprintf("migration %s: %v", e.Phase, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
