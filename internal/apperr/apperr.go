package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors crossing the repository/auth boundary fall into four kinds. The
// HTTP layer maps them to status codes and must not invent distinctions
// beyond these: in particular, a task that does not exist and a task owned
// by someone else are both ErrTaskNotFound, and every authentication
// failure is ErrAuthentication with no sub-case detail.
var (
	// ErrAuthentication covers missing, malformed, invalid and expired
	// tokens, unknown subjects and deactivated accounts alike.
	ErrAuthentication = errors.New("authentication required")

	// ErrTaskNotFound is returned both when a task id does not exist and
	// when it exists but belongs to another user.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound never crosses the HTTP boundary: login and the guard
	// translate it into ErrAuthentication before it can leak which lookup
	// failed.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports bad input with field-level detail. It is safe to
// surface to the caller.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports a duplicate value for a unique field. Naming the
// field is deliberate: which field collided is not security-sensitive.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}
