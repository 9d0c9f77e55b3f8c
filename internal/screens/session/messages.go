package session

import (
	"github.com/abhisek/sketchquiz/internal/resultlog"
	"github.com/abhisek/sketchquiz/internal/resultsync"
	"github.com/abhisek/sketchquiz/internal/summary"
)

// startMsg asks the screen to start (or restart) a session.
type startMsg struct{}

// countdownTickMsg is sent every second for one countdown generation.
type countdownTickMsg struct {
	Generation uint64
}

// syncPolledMsg carries the result of one read of the result log.
type syncPolledMsg struct {
	Generation uint64
	Record     resultlog.Record
	Status     resultsync.Status
	Err        error
}

// recognitionTimeoutMsg fires when the optional recognition timeout expires.
type recognitionTimeoutMsg struct {
	Generation uint64
}

// summaryReadyMsg is sent when the summary has been aggregated.
type summaryReadyMsg struct {
	Summary *summary.Summary
	Err     error
}

// persistMsg confirms a history write.
type persistMsg struct {
	What string
	Err  error
}
