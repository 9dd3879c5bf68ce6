package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Handlers branch on these with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrPersistence  = errors.New("persistence failure")
	ErrRetrieval    = errors.New("retrieval failure")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error attaches a failure kind and the failing operation to a cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func wrap(kind error, op string, err error) error {
	// already classified lower down
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Retrieval marks a failed read.
func Retrieval(op string, err error) error { return wrap(ErrRetrieval, op, err) }

// Persistence marks a failed write.
func Persistence(op string, err error) error { return wrap(ErrPersistence, op, err) }

// NotFound reports a missing record.
func NotFound(op, what string) error {
	return &Error{Kind: ErrNotFound, Op: op, Err: errors.New(what)}
}

// FieldError is one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors collects every rejected field of one request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool { return target == ErrValidation }

// Add appends a field error.
func (v *ValidationErrors) Add(field, reason string) {
	*v = append(*v, FieldError{Field: field, Reason: reason})
}

// Err returns nil when nothing was rejected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Invalid is a single-field validation failure.
func Invalid(field, reason string) error {
	return ValidationErrors{{Field: field, Reason: reason}}
}
