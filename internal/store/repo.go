package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Session actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
	ActionQuit  = "quit"
)

// SessionEventData is one lifecycle event of a quiz session.
type SessionEventData struct {
	SessionID    string
	Action       string
	Queue        []string
	Questions    int
	Correct      int
	Incorrect    int
	Unresolved   int
	DurationSecs int
}

// AttemptEventData records the verdict for one question.
type AttemptEventData struct {
	SessionID      string
	Position       int
	Label          string
	ArtifactName   string
	Outcome        string
	PredictedClass string
	Confidence     float64
	TimedOut       bool
	TimeMs         int64
}

// SessionSummary is a finished session as stored.
type SessionSummary struct {
	Sequence     int64     `json:"sequence" yaml:"sequence"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	SessionID    string    `json:"session_id" yaml:"session_id"`
	Action       string    `json:"action" yaml:"action"`
	Queue        []string  `json:"queue" yaml:"queue"`
	Questions    int       `json:"questions" yaml:"questions"`
	Correct      int       `json:"correct" yaml:"correct"`
	Incorrect    int       `json:"incorrect" yaml:"incorrect"`
	Unresolved   int       `json:"unresolved" yaml:"unresolved"`
	DurationSecs int       `json:"duration_secs" yaml:"duration_secs"`
}

// Accuracy is correct answers over questions asked.
func (s SessionSummary) Accuracy() float64 {
	if s.Questions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Questions)
}

// AttemptRecord is a stored attempt event.
type AttemptRecord struct {
	Sequence       int64     `json:"sequence" yaml:"sequence"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	SessionID      string    `json:"session_id" yaml:"session_id"`
	Position       int       `json:"position" yaml:"position"`
	Label          string    `json:"label" yaml:"label"`
	ArtifactName   string    `json:"artifact" yaml:"artifact"`
	Outcome        string    `json:"outcome" yaml:"outcome"`
	PredictedClass string    `json:"predicted_class,omitempty" yaml:"predicted_class,omitempty"`
	Confidence     float64   `json:"confidence" yaml:"confidence"`
	TimedOut       bool      `json:"timed_out" yaml:"timed_out"`
	TimeMs         int64     `json:"time_ms" yaml:"time_ms"`
}

// EventRepo provides append and query access to session history.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error

	// QuerySessionSummaries returns finished sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error)

	// QueryAttempts returns a session's attempts in question order.
	QueryAttempts(ctx context.Context, sessionID string) ([]AttemptRecord, error)
}
