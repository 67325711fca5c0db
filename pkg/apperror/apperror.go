// Package apperror holds the two error kinds surfaced by the API: problems
// the caller can fix and failures the caller cannot.
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError reports input the client can correct (missing columns,
// malformed cells, bad write mode).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProcessingError wraps an unexpected failure while parsing, querying or
// rendering.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func Processing(op string, err error) error {
	if err == nil {
		return nil
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	var pErr *ProcessingError
	if errors.As(err, &pErr) {
		return err
	}
	return &ProcessingError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsProcessing(err error) bool {
	var pErr *ProcessingError
	return errors.As(err, &pErr)
}
