// Package quiz implements the sketch-quiz session state machine.
//
// A Controller samples a queue of prompts, runs a countdown per prompt,
// captures the drawing and hands it off to the external classifier, then
// waits for the classifier's verdict before moving on. It performs no
// scheduling of its own: every transition returns Effects describing the
// timers and polls the driver must start, and every timer or poll result
// comes back in as an Event tagged with its generation.
package quiz

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

// Surface is the drawing collaborator.
type Surface interface {
	Capture() (image.Image, error)
	Clear()
}

// Workspace is the filesystem contract with the external classifier.
type Workspace interface {
	// Handoff writes the captured image where the classifier picks it up and
	// returns the written path.
	Handoff(label string, img image.Image) (string, error)
	// Discard removes one handed-off artifact the classifier never answered.
	Discard(path string) error
	// Purge removes artifacts, annotated images, and the result log contents.
	Purge() error
}

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Pool               []string
	Questions          int
	TimeLimit          time.Duration
	RecognitionTimeout time.Duration
	ImageExt           string

	Surface   Surface
	Workspace Workspace
	Logger    *slog.Logger

	Rand  *rand.Rand
	Now   func() time.Time
	NewID func() string
}

// Controller drives one session at a time. It is not safe for concurrent
// use; the TUI calls it only from its update loop.
type Controller struct {
	pool               []string
	questions          int
	recognitionTimeout time.Duration
	ext                string

	surface   Surface
	workspace Workspace
	logger    *slog.Logger
	rng       *rand.Rand
	now       func() time.Time
	newID     func() string

	state     State
	session   *SessionState
	countdown *Countdown

	syncGen    uint64
	syncActive bool
	consumed   map[string]bool

	timedOut bool
}

// NewController creates an idle controller.
func NewController(opts Options) *Controller {
	c := &Controller{
		pool:               opts.Pool,
		questions:          opts.Questions,
		recognitionTimeout: opts.RecognitionTimeout,
		ext:                strings.TrimPrefix(opts.ImageExt, "."),
		surface:            opts.Surface,
		workspace:          opts.Workspace,
		logger:             opts.Logger,
		rng:                opts.Rand,
		now:                opts.Now,
		newID:              opts.NewID,
		state:              StateIdle,
		consumed:           make(map[string]bool),
	}
	if c.pool == nil {
		c.pool = DefaultPool
	}
	if c.questions == 0 {
		c.questions = DefaultQuestions
	}
	if c.ext == "" {
		c.ext = "png"
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.New().String() }
	}
	limit := opts.TimeLimit
	if limit == 0 {
		limit = DefaultTimeLimit
	}
	c.countdown = NewCountdown(limit)
	return c
}

// Handle dispatches an event to the matching transition. Timer and poll
// events from a generation that is no longer active are dropped silently.
func (c *Controller) Handle(ev Event) (Effects, error) {
	switch ev.Kind {
	case EventStart:
		return c.Start()
	case EventSubmit:
		return c.SubmitOrTimeout()
	case EventTick:
		return c.tick(ev.Generation)
	case EventTimeout:
		if c.state != StateAwaitingDrawing || ev.Generation != c.countdown.Generation() {
			return Effects{}, nil
		}
		c.countdown.Stop()
		c.timedOut = true
		return c.SubmitOrTimeout()
	case EventRecognition:
		if !c.Polling(ev.Generation) {
			return Effects{}, nil
		}
		return c.RecognitionArrived(ev.Record)
	case EventRecognitionTimeout:
		if !c.Polling(ev.Generation) {
			return Effects{}, nil
		}
		a := c.current()
		c.logger.Warn("recognition timed out", "artifact", a.ArtifactName)
		// The classifier expects a single image in its drop folder, so an
		// unanswered artifact must not linger into the next question.
		if c.workspace != nil {
			if err := c.workspace.Discard(a.ArtifactPath); err != nil {
				c.logger.Warn("discard unanswered artifact", "path", a.ArtifactPath, "err", err)
			}
		}
		return c.resolve(OutcomeUnresolved, nil), nil
	case EventAcknowledge:
		c.timedOut = false
		return Effects{}, nil
	case EventReset:
		return c.Reset()
	case EventQuit:
		return c.Quit()
	}
	return Effects{}, fmt.Errorf("%w: unknown event %d", ErrInvalidTransition, ev.Kind)
}

// Start samples a new queue and shows the first prompt.
func (c *Controller) Start() (Effects, error) {
	if c.state != StateIdle {
		return Effects{}, c.invalid(EventStart)
	}
	queue, err := Sample(c.pool, c.questions, c.rng)
	if err != nil {
		return Effects{}, err
	}

	c.session = &SessionState{
		ID:        c.newID(),
		Queue:     queue,
		Status:    StatusRunning,
		Attempts:  make([]QuestionAttempt, 0, len(queue)),
		StartedAt: c.now(),
	}
	c.consumed = make(map[string]bool)
	c.timedOut = false
	c.logger.Info("session started", "session_id", c.session.ID, "queue", queue)

	eff := c.enterDrawing(0)
	eff.Started = true
	return eff, nil
}

// SubmitOrTimeout captures the drawing for the current prompt and hands it
// off. On failure the controller stays on the same prompt and the countdown
// resumes from where it stopped.
func (c *Controller) SubmitOrTimeout() (Effects, error) {
	if c.state != StateAwaitingDrawing {
		return Effects{}, c.invalid(EventSubmit)
	}
	c.countdown.Stop()

	a := c.current()
	path, err := c.capture(a.Label)
	if err != nil {
		c.logger.Error("capture failed", "label", a.Label, "err", err)
		var eff Effects
		if !c.timedOut {
			eff.Countdown = c.countdown.Resume()
		}
		return eff, &CaptureFailedError{Label: a.Label, Err: err}
	}

	a.ArtifactPath = path
	a.ArtifactName = filepath.Base(path)
	a.CapturedAt = c.now()
	a.TimedOut = c.timedOut
	c.state = StateAwaitingRecognition
	c.syncGen++
	c.syncActive = true
	c.logger.Info("artifact handed off", "label", a.Label, "path", path, "timed_out", a.TimedOut)

	req, _ := c.syncRequest()
	return Effects{Sync: &req}, nil
}

// RecognitionArrived resolves the current prompt if rec matches its
// artifact. Records for other artifacts, or already consumed ones, are
// ignored.
func (c *Controller) RecognitionArrived(rec resultlog.Record) (Effects, error) {
	if c.state != StateAwaitingRecognition || !c.syncActive {
		return Effects{}, c.invalid(EventRecognition)
	}
	a := c.current()
	if !rec.Matches(a.ArtifactName) {
		c.logger.Debug("unmatched record", "want", a.ArtifactName, "got", rec.ImageFile)
		return Effects{}, nil
	}
	key := strings.ToLower(a.ArtifactName)
	if c.consumed[key] {
		return Effects{}, nil
	}
	c.consumed[key] = true
	return c.resolve(OutcomeFromRecord(rec), &rec), nil
}

// Reset purges the workspace after a finished session and returns to idle.
func (c *Controller) Reset() (Effects, error) {
	if c.state != StateSummary {
		return Effects{}, c.invalid(EventReset)
	}
	if c.session != nil {
		c.session.Status = StatusDone
	}
	err := c.purge()
	c.session = nil
	c.state = StateIdle
	c.timedOut = false
	return Effects{Purged: true}, err
}

// Quit abandons the session from any state, purges the workspace, and
// terminates the controller. Quitting twice is a no-op.
func (c *Controller) Quit() (Effects, error) {
	if c.state == StateTerminated {
		return Effects{}, nil
	}
	c.countdown.Stop()
	c.syncActive = false
	if c.session != nil {
		for i := range c.session.Attempts {
			if c.session.Attempts[i].Outcome == OutcomePending {
				c.session.Attempts[i].Outcome = OutcomeUnresolved
				c.session.Attempts[i].ResolvedAt = c.now()
			}
		}
		c.session.Status = StatusDone
		if c.session.EndedAt.IsZero() {
			c.session.EndedAt = c.now()
		}
	}
	c.state = StateTerminated
	err := c.purge()
	c.logger.Info("controller terminated")
	return Effects{Purged: true, Terminated: true}, err
}

// Polling reports whether gen is the active synchronizer run.
func (c *Controller) Polling(gen uint64) bool {
	return c.state == StateAwaitingRecognition && c.syncActive && gen == c.syncGen
}

// SyncRequest returns the active poll request, if any.
func (c *Controller) SyncRequest() (SyncRequest, bool) {
	return c.syncRequest()
}

func (c *Controller) State() State { return c.state }

// Index returns the current queue position, or -1 outside a session.
func (c *Controller) Index() int {
	if c.session == nil {
		return -1
	}
	return c.session.CurrentIndex
}

// Session returns the live session. Callers must not retain it across
// updates; use Clone for that.
func (c *Controller) Session() *SessionState { return c.session }

// Countdown exposes the timer for display.
func (c *Controller) Countdown() *Countdown { return c.countdown }

// TimedOut reports whether the time's-up notice is showing.
func (c *Controller) TimedOut() bool { return c.timedOut }

// CurrentLabel returns the prompt being drawn or recognized.
func (c *Controller) CurrentLabel() string {
	if c.state != StateAwaitingDrawing && c.state != StateAwaitingRecognition {
		return ""
	}
	return c.current().Label
}

// LastResolved returns the most recently resolved attempt.
func (c *Controller) LastResolved() (QuestionAttempt, bool) {
	if c.session == nil {
		return QuestionAttempt{}, false
	}
	for i := len(c.session.Attempts) - 1; i >= 0; i-- {
		if c.session.Attempts[i].Outcome != OutcomePending {
			return c.session.Attempts[i], true
		}
	}
	return QuestionAttempt{}, false
}

func (c *Controller) tick(gen uint64) (Effects, error) {
	if c.state != StateAwaitingDrawing {
		return Effects{}, nil
	}
	_, timedOut := c.countdown.Tick(gen)
	if timedOut {
		c.timedOut = true
		return c.SubmitOrTimeout()
	}
	if c.countdown.Running() && gen == c.countdown.Generation() {
		return Effects{Countdown: gen}, nil
	}
	return Effects{}, nil
}

func (c *Controller) enterDrawing(i int) Effects {
	label := c.session.Queue[i]
	c.session.CurrentIndex = i
	c.session.Attempts = append(c.session.Attempts, QuestionAttempt{
		Label:        label,
		ArtifactName: label + "." + c.ext,
		StartedAt:    c.now(),
	})
	if c.surface != nil {
		c.surface.Clear()
	}
	c.state = StateAwaitingDrawing
	return Effects{Countdown: c.countdown.Start()}
}

func (c *Controller) resolve(outcome Outcome, rec *resultlog.Record) Effects {
	c.syncActive = false
	a := c.current()
	a.Outcome = outcome
	a.Record = rec
	a.ResolvedAt = c.now()
	resolved := *a
	c.logger.Info("question resolved", "label", a.Label, "outcome", outcome.String())

	eff := Effects{Resolved: &resolved}
	next := c.session.CurrentIndex + 1
	if next < len(c.session.Queue) {
		c.timedOut = false
		return eff.Merge(c.enterDrawing(next))
	}

	c.session.CurrentIndex = len(c.session.Queue)
	c.session.Status = StatusSummarizing
	c.session.EndedAt = c.now()
	c.state = StateSummary
	eff.Summary = true
	return eff
}

func (c *Controller) capture(label string) (string, error) {
	if c.surface == nil {
		return "", errors.New("no drawing surface")
	}
	if c.workspace == nil {
		return "", errors.New("no workspace")
	}
	img, err := c.surface.Capture()
	if err != nil {
		return "", err
	}
	return c.workspace.Handoff(label, img)
}

func (c *Controller) purge() error {
	if c.workspace == nil {
		return nil
	}
	if err := c.workspace.Purge(); err != nil {
		c.logger.Error("purge failed", "err", err)
		return fmt.Errorf("purge workspace: %w", err)
	}
	return nil
}

func (c *Controller) syncRequest() (SyncRequest, bool) {
	if c.state != StateAwaitingRecognition || !c.syncActive {
		return SyncRequest{}, false
	}
	exclude := make([]string, 0, len(c.consumed))
	for name := range c.consumed {
		exclude = append(exclude, name)
	}
	return SyncRequest{
		Generation: c.syncGen,
		Artifact:   c.current().ArtifactName,
		Exclude:    exclude,
		Timeout:    c.recognitionTimeout,
	}, true
}

func (c *Controller) current() *QuestionAttempt {
	return &c.session.Attempts[len(c.session.Attempts)-1]
}

func (c *Controller) invalid(k EventKind) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, k, c.state)
}
