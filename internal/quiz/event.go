package quiz

import (
	"time"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

// EventKind enumerates every input the controller reacts to.
type EventKind int

const (
	EventStart EventKind = iota
	EventSubmit
	EventTick
	EventTimeout
	EventRecognition
	EventRecognitionTimeout
	EventAcknowledge
	EventReset
	EventQuit
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventSubmit:
		return "submit"
	case EventTick:
		return "tick"
	case EventTimeout:
		return "timeout"
	case EventRecognition:
		return "recognition"
	case EventRecognitionTimeout:
		return "recognition-timeout"
	case EventAcknowledge:
		return "acknowledge"
	case EventReset:
		return "reset"
	case EventQuit:
		return "quit"
	}
	return "unknown"
}

// Event is one input to the state machine. Generation ties timer and poll
// events to the countdown or synchronizer run that produced them.
type Event struct {
	Kind       EventKind
	Generation uint64
	Record     resultlog.Record
}

// SyncRequest asks the driver to poll the result log for one artifact.
type SyncRequest struct {
	Generation uint64
	Artifact   string
	// Exclude lists artifact names already consumed this session.
	Exclude []string
	// Timeout is zero when the wait is unbounded.
	Timeout time.Duration
}

// Effects tell the driver what to schedule after an event.
type Effects struct {
	// Countdown is non-zero when a 1-second tick should be scheduled for
	// that countdown generation.
	Countdown uint64
	// Sync is set when a synchronizer run should start or keep polling.
	Sync *SyncRequest
	// Resolved is a copy of the attempt that just received its outcome.
	Resolved *QuestionAttempt
	// Started is set when a new session began.
	Started bool
	// Summary is set on entering the summary state.
	Summary    bool
	Purged     bool
	Terminated bool
}

// Merge folds other into e. Later values win.
func (e Effects) Merge(other Effects) Effects {
	if other.Countdown != 0 {
		e.Countdown = other.Countdown
	}
	if other.Sync != nil {
		e.Sync = other.Sync
	}
	if other.Resolved != nil {
		e.Resolved = other.Resolved
	}
	e.Started = e.Started || other.Started
	e.Summary = e.Summary || other.Summary
	e.Purged = e.Purged || other.Purged
	e.Terminated = e.Terminated || other.Terminated
	return e
}
