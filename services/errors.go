package services

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a submit arrives while a generation is in flight.
	ErrBusy = errors.New("session is busy")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")

	errNoGenerator     = errors.New("no generator configured")
	errEmptyGeneration = errors.New("empty generation")
)

// GenerationError reports a generation call that failed after all attempts.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError reports model output that did not hold a well-formed analysis.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse analysis: %s: %v", e.Reason, e.Err)
	}
	return "parse analysis: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports an out-of-order or empty-input transition. The state
// is left untouched whenever one is returned.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func invalid(op, reason string) error {
	return &ValidationError{Op: op, Reason: reason}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
