package quiz

import (
	"time"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

// State is the controller's position in the session state machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingDrawing
	StateAwaitingRecognition
	StateSummary
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDrawing:
		return "awaiting-drawing"
	case StateAwaitingRecognition:
		return "awaiting-recognition"
	case StateSummary:
		return "summary"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// SessionStatus is the coarse lifecycle of a SessionState.
type SessionStatus int

const (
	StatusIdle SessionStatus = iota
	StatusRunning
	StatusSummarizing
	StatusDone
)

func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusSummarizing:
		return "summarizing"
	case StatusDone:
		return "done"
	}
	return "unknown"
}

// Outcome is the verdict for one question.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
	OutcomeUnresolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// OutcomeFromRecord maps a classifier verdict to an outcome.
func OutcomeFromRecord(rec resultlog.Record) Outcome {
	if rec.Correct {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}

// QuestionAttempt tracks one queue position from display to verdict.
type QuestionAttempt struct {
	Label        string
	ArtifactName string
	ArtifactPath string
	StartedAt    time.Time
	CapturedAt   time.Time
	ResolvedAt   time.Time
	TimedOut     bool
	Outcome      Outcome
	Record       *resultlog.Record
}

// Captured reports whether the drawing has been handed off.
func (a QuestionAttempt) Captured() bool {
	return a.ArtifactPath != ""
}

// SessionState is one run through the sampled queue.
type SessionState struct {
	ID           string
	Queue        []string
	CurrentIndex int
	Status       SessionStatus
	Attempts     []QuestionAttempt
	StartedAt    time.Time
	EndedAt      time.Time
}

// Tally counts outcomes across all attempts.
func (s *SessionState) Tally() (correct, incorrect, unresolved int) {
	for _, a := range s.Attempts {
		switch a.Outcome {
		case OutcomeCorrect:
			correct++
		case OutcomeIncorrect:
			incorrect++
		case OutcomeUnresolved:
			unresolved++
		}
	}
	return correct, incorrect, unresolved
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	c.Queue = append([]string(nil), s.Queue...)
	c.Attempts = make([]QuestionAttempt, len(s.Attempts))
	for i, a := range s.Attempts {
		if a.Record != nil {
			rec := *a.Record
			a.Record = &rec
		}
		c.Attempts[i] = a
	}
	return &c
}
