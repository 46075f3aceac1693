package core

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// ErrNotFound is the generic id-lookup miss for top-level entities
// (accounts, courses, homeworks, folders, files).
var ErrNotFound = errors.New("not found")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// PartialFailure reports a logical operation that applied its first physical
// write but could not confirm a subsequent one. The caller must treat the
// affected tables as needing reconciliation; the core does not retry.
type PartialFailure struct {
	Op   string // the logical operation, e.g. "catalog.Enroll"
	Step string // the write that could not be confirmed
	Err  error
}

func NewPartialFailure(op, step string, err error) error {
	return &PartialFailure{Op: op, Step: step, Err: err}
}

func (err PartialFailure) Error() string {
	return err.Op + ": " + err.Step + " not confirmed: " + err.Err.Error()
}

func (err PartialFailure) Unwrap() error { return err.Err }

func IsPartialFailure(err error) bool {
	var pf *PartialFailure
	return errors.As(err, &pf)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := pkgerrors.Cause(err).(*shutdown)
	return ok
}
