package helper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
)

// ErrKind is the closed set of failure categories handlers and tests
// can assert on, instead of matching message text.
type ErrKind string

const (
	KindValidation    ErrKind = "VALIDATION_ERROR"
	KindConflict      ErrKind = "CONFLICT"
	KindStorage       ErrKind = "STORAGE_ERROR"
	KindAuthorization ErrKind = "AUTHORIZATION_ERROR"
	KindNotFound      ErrKind = "NOT_FOUND"
	KindInternal      ErrKind = "INTERNAL_ERROR"
)

type DomainError struct {
	Kind    ErrKind
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

func NewValidationError(msg string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: msg}
}

func NewConflictError(msg string, cause error) *DomainError {
	return &DomainError{Kind: KindConflict, Message: msg, cause: cause}
}

func NewStorageError(msg string, cause error) *DomainError {
	return &DomainError{Kind: KindStorage, Message: msg, cause: cause}
}

func NewAuthorizationError(msg string) *DomainError {
	return &DomainError{Kind: KindAuthorization, Message: msg}
}

func NewNotFoundError(msg string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: msg}
}

// KindOf classifies any error into an ErrKind (internal when unknown).
func KindOf(err error) ErrKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func statusForKind(k ErrKind) int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindStorage:
		return fiber.StatusBadGateway
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The string fallbacks keep the check working
// against sqlite in tests and against gorm-wrapped errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "SQLSTATE 23505")
}
