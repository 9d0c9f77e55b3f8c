package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCount      = errors.New("question count must not be negative")
	ErrInvalidPool       = errors.New("invalid question pool")
	ErrInvalidTransition = errors.New("invalid transition")
)

// InsufficientPoolError is returned when more questions are requested than
// the pool holds. It is fatal to starting a session.
type InsufficientPoolError struct {
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("cannot sample %d questions from a pool of %d", e.Requested, e.Available)
}

// CaptureFailedError is returned when the drawing could not be captured or
// written to the handoff location. The session stays on the same question.
type CaptureFailedError struct {
	Label string
	Err   error
}

func (e *CaptureFailedError) Error() string {
	return fmt.Sprintf("capture %q: %v", e.Label, e.Err)
}

func (e *CaptureFailedError) Unwrap() error {
	return e.Err
}
