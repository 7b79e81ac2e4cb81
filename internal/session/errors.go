package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrSuperseded means the image changed while a caption was being
	// generated, so the caption was dropped.
	ErrSuperseded = errors.New("image changed while caption was generating")
)

type Reason string

const (
	ReasonTooLarge    Reason = "too_large"
	ReasonNotImage    Reason = "not_image"
	ReasonUndecodable Reason = "undecodable"
	ReasonMissing     Reason = "missing"
	ReasonOutOfRange  Reason = "out_of_range"
	ReasonMalformed   Reason = "malformed"
)

// ValidationError rejects user input without touching session state.
type ValidationError struct {
	Field  string
	Reason Reason
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s (%s): %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s (%s)", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }
