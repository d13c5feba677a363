package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "integrity check failed: authentication tag mismatch",
		(&models.IntegrityError{Reason: "authentication tag mismatch"}).Error())

	assert.Equal(t, "encryption error: blob too short",
		(&models.EncryptionError{Reason: "blob too short"}).Error())

	assert.Equal(t, "storage open: bad header",
		(&models.StorageError{Op: "open", Err: errors.New("bad header")}).Error())

	assert.Equal(t, "migration copying: table documents: boom",
		(&models.MigrationError{Phase: "copying", Table: "documents", Err: errors.New("boom")}).Error())
	assert.Equal(t, "migration backing_up: boom",
		(&models.MigrationError{Phase: "backing_up", Err: errors.New("boom")}).Error())
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")

	assert.ErrorIs(t, &models.StorageError{Op: "open", Err: inner}, inner)
	assert.ErrorIs(t, &models.MigrationError{Phase: "copying", Err: inner}, inner)
	assert.ErrorIs(t, &models.EncryptionError{Reason: "padding", Err: inner}, inner)
}
