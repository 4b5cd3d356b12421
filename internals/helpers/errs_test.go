package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidationError("x")))
	assert.Equal(t, KindConflict, KindOf(NewConflictError("x", nil)))
	assert.Equal(t, KindStorage, KindOf(NewStorageError("x", nil)))
	assert.Equal(t, KindAuthorization, KindOf(NewAuthorizationError("x")))
	assert.Equal(t, KindNotFound, KindOf(NewNotFoundError("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewStorageError("upload failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("duplicate key value violates unique constraint")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("UNIQUE constraint failed: topics.slug")))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
