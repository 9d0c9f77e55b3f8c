package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sketchquiz/internal/canvas"
	"github.com/abhisek/sketchquiz/internal/config"
	"github.com/abhisek/sketchquiz/internal/quiz"
	"github.com/abhisek/sketchquiz/internal/resultsync"
	"github.com/abhisek/sketchquiz/internal/router"
	"github.com/abhisek/sketchquiz/internal/screen"
	"github.com/abhisek/sketchquiz/internal/store"
	"github.com/abhisek/sketchquiz/internal/summary"
	"github.com/abhisek/sketchquiz/internal/ui/components"
	"github.com/abhisek/sketchquiz/internal/ui/layout"
	"github.com/abhisek/sketchquiz/internal/workspace"
)

// Deps are the collaborators a session needs.
type Deps struct {
	Config    *config.Config
	Workspace workspace.Layout
	// EventRepo may be nil, in which case history is not recorded.
	EventRepo store.EventRepo
	Logger    *slog.Logger
	// Rand seeds question sampling; nil uses the global source.
	Rand *rand.Rand
}

// SessionScreen runs one quiz at a time and is reused for replays.
type SessionScreen struct {
	deps    Deps
	ctrl    *quiz.Controller
	canvas  *canvas.Canvas
	sync    *resultsync.Synchronizer
	spinner components.Spinner

	ctx    context.Context
	cancel context.CancelFunc

	showingQuitConfirm bool
	errMsg             string
	notice             string
	summarizing        bool
	closed             bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New creates a SessionScreen. The quiz starts when the screen is pushed.
func New(deps Deps) *SessionScreen {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	cfg := deps.Config

	cv := canvas.New(canvas.DefaultCols, canvas.DefaultRows)
	ctx, cancel := context.WithCancel(context.Background())

	s := &SessionScreen{
		deps:   deps,
		canvas: cv,
		sync: resultsync.New(resultsync.Options{
			LogPath:  deps.Workspace.LogPath,
			Interval: cfg.PollInterval,
			Delay:    cfg.RecognitionDelay,
			Logger:   deps.Logger,
		}),
		spinner: components.NewSpinner("Waiting for the classifier..."),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.ctrl = quiz.NewController(quiz.Options{
		Pool:               cfg.Pool,
		Questions:          cfg.Questions,
		TimeLimit:          cfg.TimeLimit,
		RecognitionTimeout: cfg.RecognitionTimeout,
		ImageExt:           deps.Workspace.Ext,
		Surface:            cv,
		Workspace:          deps.Workspace,
		Logger:             deps.Logger,
		Rand:               deps.Rand,
	})
	return s
}

// Controller exposes the state machine, mainly for tests.
func (s *SessionScreen) Controller() *quiz.Controller { return s.ctrl }

func (s *SessionScreen) Init() tea.Cmd {
	if err := s.deps.Workspace.Ensure(); err != nil {
		s.deps.Logger.Error("workspace unavailable", "err", err)
		s.errMsg = err.Error()
		return nil
	}
	// Polling still works without the watch; Watch logs the reason.
	_ = s.sync.Watch()
	return func() tea.Msg { return startMsg{} }
}

func (s *SessionScreen) Title() string {
	switch s.ctrl.State() {
	case quiz.StateAwaitingDrawing:
		return "Draw!"
	case quiz.StateAwaitingRecognition:
		return "Recognizing"
	case quiz.StateSummary:
		return "Results"
	}
	return "Session"
}

func (s *SessionScreen) Status() string {
	sess := s.ctrl.Session()
	if sess == nil || s.ctrl.Index() >= len(sess.Queue) {
		return ""
	}
	correct, _, _ := sess.Tally()
	return formatStatus(s.ctrl.Index()+1, len(sess.Queue), correct)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.showingQuitConfirm {
		return []layout.KeyHint{hint(keys.Confirm), hint(keys.Cancel)}
	}
	if s.ctrl.TimedOut() {
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	if s.ctrl.State() == quiz.StateAwaitingDrawing {
		return []layout.KeyHint{
			{Key: "Mouse", Description: "Draw"},
			hint(keys.Submit),
			{Key: "[ ]", Description: "Brush"},
			{Key: "C", Description: "Color"},
			{Key: "E", Description: "Eraser"},
			{Key: "X", Description: "Clear"},
			hint(keys.Quit),
		}
	}
	return []layout.KeyHint{hint(keys.Quit)}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		return s.handleStart()

	case countdownTickMsg:
		return s.handleEvent(quiz.Event{Kind: quiz.EventTick, Generation: msg.Generation})

	case syncPolledMsg:
		return s.handleSyncPolled(msg)

	case recognitionTimeoutMsg:
		return s.handleEvent(quiz.Event{Kind: quiz.EventRecognitionTimeout, Generation: msg.Generation})

	case summaryReadyMsg:
		return s.handleSummaryReady(msg)

	case persistMsg:
		if msg.Err != nil {
			s.deps.Logger.Warn("history write failed", "what", msg.What, "err", msg.Err)
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg:
		if s.drawing() {
			return s, s.canvas.Update(msg)
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// Close abandons any running quiz, purging the workspace, and stops the
// result watch.
func (s *SessionScreen) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()

	var errs []error
	switch st := s.ctrl.State(); st {
	case quiz.StateIdle, quiz.StateTerminated:
	default:
		if _, err := s.ctrl.Quit(); err != nil {
			errs = append(errs, err)
		}
		// A game that reached its summary was already recorded as ended.
		if st != quiz.StateSummary {
			s.persistSessionSync(store.ActionQuit)
		}
	}
	if err := s.sync.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *SessionScreen) drawing() bool {
	return s.ctrl.State() == quiz.StateAwaitingDrawing && !s.showingQuitConfirm && !s.ctrl.TimedOut()
}

func (s *SessionScreen) handleStart() (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	s.notice = ""
	s.summarizing = false
	s.canvas.Clear()

	eff, err := s.ctrl.Handle(quiz.Event{Kind: quiz.EventStart})
	if err != nil {
		var insufficient *quiz.InsufficientPoolError
		if errors.As(err, &insufficient) {
			s.errMsg = err.Error()
			return s, nil
		}
		s.deps.Logger.Debug("start ignored", "err", err)
		return s, nil
	}
	return s, s.applyEffects(eff)
}

func (s *SessionScreen) handleEvent(ev quiz.Event) (screen.Screen, tea.Cmd) {
	eff, err := s.ctrl.Handle(ev)
	if err != nil {
		var capErr *quiz.CaptureFailedError
		if errors.As(err, &capErr) {
			s.notice = "Could not save drawing: " + capErr.Err.Error()
		} else {
			s.deps.Logger.Debug("event ignored", "event", ev.Kind.String(), "err", err)
		}
	}
	return s, s.applyEffects(eff)
}

func (s *SessionScreen) handleSyncPolled(msg syncPolledMsg) (screen.Screen, tea.Cmd) {
	if !s.ctrl.Polling(msg.Generation) {
		return s, nil
	}
	if msg.Err != nil {
		// Context cancelled or synchronizer closed: the screen is going away.
		return s, nil
	}

	var cmds []tea.Cmd
	if msg.Status == resultsync.StatusMatched {
		_, cmd := s.handleEvent(quiz.Event{
			Kind:       quiz.EventRecognition,
			Generation: msg.Generation,
			Record:     msg.Record,
		})
		cmds = append(cmds, cmd)
	}
	if req, ok := s.ctrl.SyncRequest(); ok && req.Generation == msg.Generation {
		cmds = append(cmds, s.pollCmd(req, false))
	}
	return s, tea.Batch(cmds...)
}

func (s *SessionScreen) handleSummaryReady(msg summaryReadyMsg) (screen.Screen, tea.Cmd) {
	s.summarizing = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	return s, func() tea.Msg {
		return router.PushScreenMsg{Screen: newSummaryScreenAdapter(s, msg.Summary)}
	}
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.showingQuitConfirm {
		switch {
		case key.Matches(msg, keys.Confirm):
			s.showingQuitConfirm = false
			return s, s.quit()
		case key.Matches(msg, keys.Cancel):
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if key.Matches(msg, keys.Quit) {
		s.showingQuitConfirm = true
		return s, nil
	}

	if s.ctrl.TimedOut() {
		return s.handleEvent(quiz.Event{Kind: quiz.EventAcknowledge})
	}

	if s.ctrl.State() != quiz.StateAwaitingDrawing {
		return s, nil
	}

	if key.Matches(msg, keys.Submit) {
		s.notice = ""
		return s.handleEvent(quiz.Event{Kind: quiz.EventSubmit})
	}
	return s, s.canvas.Update(msg)
}

// quit ends the game early and returns to the home screen.
func (s *SessionScreen) quit() tea.Cmd {
	if _, err := s.ctrl.Handle(quiz.Event{Kind: quiz.EventQuit}); err != nil {
		s.deps.Logger.Warn("quit", "err", err)
	}
	s.spinner.Stop()
	return tea.Batch(
		s.persistSession(store.ActionQuit),
		func() tea.Msg { return router.PopScreenMsg{} },
	)
}

// replay resets the finished session and starts a new one on this screen.
func (s *SessionScreen) replay() tea.Cmd {
	if _, err := s.ctrl.Handle(quiz.Event{Kind: quiz.EventReset}); err != nil {
		s.deps.Logger.Warn("reset", "err", err)
	}
	return func() tea.Msg { return startMsg{} }
}

// exit purges the workspace and ends the program.
func (s *SessionScreen) exit() tea.Cmd {
	if _, err := s.ctrl.Handle(quiz.Event{Kind: quiz.EventQuit}); err != nil {
		s.deps.Logger.Warn("exit", "err", err)
	}
	return tea.Quit
}

// applyEffects turns controller effects into commands.
func (s *SessionScreen) applyEffects(eff quiz.Effects) tea.Cmd {
	var cmds []tea.Cmd

	if eff.Started {
		cmds = append(cmds, s.persistSession(store.ActionStart))
	}
	if eff.Resolved != nil {
		s.spinner.Stop()
		cmds = append(cmds, s.persistAttempt(*eff.Resolved))
	}
	if eff.Countdown != 0 {
		cmds = append(cmds, tickCmd(eff.Countdown))
	}
	if eff.Sync != nil {
		cmds = append(cmds, s.spinner.Start(), s.pollCmd(*eff.Sync, true))
		if eff.Sync.Timeout > 0 {
			gen := eff.Sync.Generation
			cmds = append(cmds, tea.Tick(eff.Sync.Timeout, func(time.Time) tea.Msg {
				return recognitionTimeoutMsg{Generation: gen}
			}))
		}
	}
	if eff.Summary {
		s.summarizing = true
		cmds = append(cmds, s.persistSession(store.ActionEnd), s.buildSummary())
	}
	return tea.Batch(cmds...)
}

func (s *SessionScreen) pollCmd(req quiz.SyncRequest, first bool) tea.Cmd {
	ctx, sync := s.ctx, s.sync
	consumed := resultsync.Consumed(req.Exclude)
	return func() tea.Msg {
		rec, status, err := sync.Poll(ctx, req.Artifact, consumed, first)
		return syncPolledMsg{Generation: req.Generation, Record: rec, Status: status, Err: err}
	}
}

func (s *SessionScreen) buildSummary() tea.Cmd {
	l := s.deps.Workspace
	n := s.deps.Config.Questions
	var attempts []quiz.QuestionAttempt
	if sess := s.ctrl.Session(); sess != nil {
		attempts = sess.Clone().Attempts
	}
	return func() tea.Msg {
		sum, err := summary.Build(l.LogPath, l.AnnotatedDir, n)
		if err != nil {
			return summaryReadyMsg{Err: err}
		}
		return summaryReadyMsg{Summary: summary.Merge(sum, attempts)}
	}
}

func (s *SessionScreen) sessionEvent(action string) (store.SessionEventData, bool) {
	sess := s.ctrl.Session()
	if sess == nil {
		return store.SessionEventData{}, false
	}
	correct, incorrect, unresolved := sess.Tally()
	end := sess.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	data := store.SessionEventData{
		SessionID:  sess.ID,
		Action:     action,
		Queue:      append([]string(nil), sess.Queue...),
		Questions:  len(sess.Queue),
		Correct:    correct,
		Incorrect:  incorrect,
		Unresolved: unresolved,
	}
	if action != store.ActionStart {
		data.DurationSecs = int(end.Sub(sess.StartedAt).Seconds())
	}
	return data, true
}

func (s *SessionScreen) persistSession(action string) tea.Cmd {
	repo := s.deps.EventRepo
	data, ok := s.sessionEvent(action)
	if repo == nil || !ok {
		return nil
	}
	return func() tea.Msg {
		err := repo.AppendSessionEvent(context.Background(), data)
		return persistMsg{What: "session " + action, Err: err}
	}
}

// persistSessionSync is used on close, when no command loop is left to run
// the write.
func (s *SessionScreen) persistSessionSync(action string) {
	repo := s.deps.EventRepo
	data, ok := s.sessionEvent(action)
	if repo == nil || !ok {
		return
	}
	if err := repo.AppendSessionEvent(context.Background(), data); err != nil {
		s.deps.Logger.Warn("history write failed", "what", "session "+action, "err", err)
	}
}

func (s *SessionScreen) persistAttempt(a quiz.QuestionAttempt) tea.Cmd {
	repo := s.deps.EventRepo
	sess := s.ctrl.Session()
	if repo == nil || sess == nil {
		return nil
	}
	data := store.AttemptEventData{
		SessionID:    sess.ID,
		Position:     s.ctrl.Index(),
		Label:        a.Label,
		ArtifactName: a.ArtifactName,
		Outcome:      a.Outcome.String(),
		TimedOut:     a.TimedOut,
	}
	// The controller has already advanced past the resolved attempt.
	for i := range sess.Attempts {
		if sess.Attempts[i].Label == a.Label {
			data.Position = i
			break
		}
	}
	if !a.CapturedAt.IsZero() {
		data.TimeMs = a.CapturedAt.Sub(a.StartedAt).Milliseconds()
	}
	if a.Record != nil {
		data.PredictedClass = a.Record.PredictedClass
		data.Confidence = a.Record.Confidence
	}
	return func() tea.Msg {
		err := repo.AppendAttemptEvent(context.Background(), data)
		return persistMsg{What: "attempt " + a.Label, Err: err}
	}
}

// tickCmd returns a 1-second tick for one countdown generation.
func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{Generation: gen}
	})
}
