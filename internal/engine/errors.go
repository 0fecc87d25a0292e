package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/reqm/internal/rewrite"
)

// RunError represents an error detected while running a requirement set.
//
// Run errors include:
//   - Invalid input: a term does not parse or a protocol is undeclared
//   - Invariant violation: the rewrite system failed a consistency check
//
// Completion stopping at a limit is not a RunError; it is reported through
// Result.Outcome and Result.Err.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, when one was assigned.
	RunID string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeInvalidInput indicates the requirement set cannot be built.
	ErrCodeInvalidInput RunErrorCode = "INVALID_INPUT"

	// ErrCodeInvariantViolation indicates a rewrite system consistency check
	// failed.
	ErrCodeInvariantViolation RunErrorCode = "INVARIANT_VIOLATION"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error { return e.Err }

// IsInvalidInput returns true if the error is an invalid input error.
// Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidInput
	}
	return false
}

// IsInvariantViolation returns true if the error is an invariant violation.
func IsInvariantViolation(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvariantViolation
	}
	return false
}

func newInvalidInputError(cause error, format string, args ...any) *RunError {
	return &RunError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// guardInvariants runs fn and converts a rewrite invariant panic into a
// RunError. Any other panic is re-raised.
func guardInvariants(runID string, fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*rewrite.InvariantError)
		if !ok {
			panic(r)
		}
		err = &RunError{
			Code:    ErrCodeInvariantViolation,
			Message: ie.Error(),
			RunID:   runID,
			Details: map[string]string{"invariant": string(ie.Code)},
			Err:     ie,
		}
	}()
	fn()
	return nil
}
