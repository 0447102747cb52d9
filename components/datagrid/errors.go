package datagrid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateID matches any DuplicateIDError via errors.Is.
	ErrDuplicateID = errors.New("datagrid: duplicate row id")
	// ErrNotFound matches any NotFoundError via errors.Is.
	ErrNotFound = errors.New("datagrid: row not found")
	// ErrValidation matches any ValidationError via errors.Is.
	ErrValidation = errors.New("datagrid: validation failed")
)

// DuplicateIDError lists every id that appears more than once.
type DuplicateIDError struct {
	IDs []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("datagrid: duplicate row ids: %s", strings.Join(e.IDs, ", "))
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// NotFoundError reports an edit or delete against an unknown id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("datagrid: row %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field problems found before a mutation.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.cause != nil {
			return "datagrid: validation failed: " + e.cause.Error()
		}
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "datagrid: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.cause }

func newValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
