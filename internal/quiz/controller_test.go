package quiz

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

type fakeSurface struct {
	captures int
	clears   int
	fail     error
}

func (s *fakeSurface) Capture() (image.Image, error) {
	s.captures++
	if s.fail != nil {
		return nil, s.fail
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (s *fakeSurface) Clear() { s.clears++ }

type fakeWorkspace struct {
	handoffs  []string
	discarded []string
	purges    int
	fail      error
}

func (w *fakeWorkspace) Handoff(label string, _ image.Image) (string, error) {
	if w.fail != nil {
		return "", w.fail
	}
	w.handoffs = append(w.handoffs, label)
	return "/ws/images/" + label + ".png", nil
}

func (w *fakeWorkspace) Discard(path string) error {
	w.discarded = append(w.discarded, path)
	return nil
}

func (w *fakeWorkspace) Purge() error {
	w.purges++
	return nil
}

func newTestController(t *testing.T) (*Controller, *fakeSurface, *fakeWorkspace) {
	t.Helper()
	surface := &fakeSurface{}
	ws := &fakeWorkspace{}
	c := NewController(Options{
		TimeLimit: 3 * time.Second,
		Surface:   surface,
		Workspace: ws,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:      rand.New(rand.NewPCG(42, 42)),
		NewID:     func() string { return "test-session" },
	})
	return c, surface, ws
}

func verdict(label string, correct bool) resultlog.Record {
	return resultlog.Record{ImageFile: label + ".png", PredictedClass: label, Correct: correct}
}

func TestController_StartShowsFirstPrompt(t *testing.T) {
	c, surface, _ := newTestController(t)

	eff, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !eff.Started || eff.Countdown == 0 {
		t.Errorf("effects = %+v, want Started with countdown", eff)
	}
	if c.State() != StateAwaitingDrawing {
		t.Errorf("state = %s", c.State())
	}
	if c.Index() != 0 {
		t.Errorf("index = %d, want 0", c.Index())
	}
	if len(c.Session().Queue) != DefaultQuestions {
		t.Errorf("queue len = %d", len(c.Session().Queue))
	}
	if c.CurrentLabel() != c.Session().Queue[0] {
		t.Errorf("label = %q, want %q", c.CurrentLabel(), c.Session().Queue[0])
	}
	if surface.clears != 1 {
		t.Errorf("clears = %d, want 1", surface.clears)
	}

	if _, err := c.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Start: err = %v", err)
	}
}

func TestController_FullSessionVisitsQueueInOrder(t *testing.T) {
	c, _, ws := newTestController(t)
	if _, err := c.Start(); err != nil {
		t.Fatal(err)
	}
	queue := append([]string(nil), c.Session().Queue...)

	for i, label := range queue {
		if c.State() != StateAwaitingDrawing || c.Index() != i {
			t.Fatalf("step %d: state=%s index=%d", i, c.State(), c.Index())
		}
		eff, err := c.SubmitOrTimeout()
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if eff.Sync == nil || eff.Sync.Artifact != label+".png" {
			t.Fatalf("sync = %+v, want artifact %s.png", eff.Sync, label)
		}
		if c.State() != StateAwaitingRecognition {
			t.Fatalf("state after submit = %s", c.State())
		}

		eff, err = c.Handle(Event{Kind: EventRecognition, Generation: eff.Sync.Generation, Record: verdict(label, i%2 == 0)})
		if err != nil {
			t.Fatalf("recognition %d: %v", i, err)
		}
		if eff.Resolved == nil || eff.Resolved.Label != label {
			t.Fatalf("resolved = %+v", eff.Resolved)
		}
	}

	if c.State() != StateSummary {
		t.Fatalf("state = %s, want summary", c.State())
	}
	if c.Session().Status != StatusSummarizing {
		t.Errorf("status = %s", c.Session().Status)
	}
	if len(ws.handoffs) != len(queue) {
		t.Errorf("handoffs = %d, want %d", len(ws.handoffs), len(queue))
	}
	correct, incorrect, unresolved := c.Session().Tally()
	if correct != 3 || incorrect != 3 || unresolved != 0 {
		t.Errorf("tally = %d/%d/%d", correct, incorrect, unresolved)
	}
}

func TestController_CorrectVerdictResolvesCorrect(t *testing.T) {
	c := NewController(Options{
		Pool:      []string{"cat"},
		Questions: 1,
		Surface:   &fakeSurface{},
		Workspace: &fakeWorkspace{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	c.Start()
	eff, _ := c.SubmitOrTimeout()

	rec, err := resultlog.Parse("Image: cat.png | Predicted Class: cat | Confidence: 0.90 | Result: yes")
	if err != nil {
		t.Fatal(err)
	}
	eff, err = c.Handle(Event{Kind: EventRecognition, Generation: eff.Sync.Generation, Record: rec})
	if err != nil {
		t.Fatal(err)
	}
	if eff.Resolved.Outcome != OutcomeCorrect {
		t.Errorf("outcome = %s, want correct", eff.Resolved.Outcome)
	}
	if !eff.Summary {
		t.Error("expected summary after last question")
	}
}

func TestController_TimeoutHandsOffOnce(t *testing.T) {
	c, surface, ws := newTestController(t)
	eff, _ := c.Start()
	gen := eff.Countdown

	var syncs int
	for i := 0; i < 3; i++ {
		eff, err := c.Handle(Event{Kind: EventTick, Generation: gen})
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if eff.Sync != nil {
			syncs++
		}
	}
	if syncs != 1 {
		t.Fatalf("syncs = %d, want 1", syncs)
	}
	if !c.TimedOut() {
		t.Error("expected time's-up notice")
	}

	// Late timer events after the handoff change nothing.
	for i := 0; i < 3; i++ {
		if _, err := c.Handle(Event{Kind: EventTimeout, Generation: gen}); err != nil {
			t.Fatalf("late timeout: %v", err)
		}
		if _, err := c.Handle(Event{Kind: EventTick, Generation: gen}); err != nil {
			t.Fatalf("late tick: %v", err)
		}
	}
	if surface.captures != 1 || len(ws.handoffs) != 1 {
		t.Errorf("captures=%d handoffs=%d, want 1/1", surface.captures, len(ws.handoffs))
	}
	if !c.Session().Attempts[0].TimedOut {
		t.Error("attempt not marked timed out")
	}

	if _, err := c.SubmitOrTimeout(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit while awaiting recognition: err = %v", err)
	}

	c.Handle(Event{Kind: EventAcknowledge})
	if c.TimedOut() {
		t.Error("notice not cleared by acknowledge")
	}
}

func TestController_CaptureFailureStaysOnQuestion(t *testing.T) {
	c, surface, _ := newTestController(t)
	eff, _ := c.Start()
	c.Handle(Event{Kind: EventTick, Generation: eff.Countdown})

	surface.fail = errors.New("surface gone")
	eff, err := c.SubmitOrTimeout()
	var capErr *CaptureFailedError
	if !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want CaptureFailedError", err)
	}
	if c.State() != StateAwaitingDrawing || c.Index() != 0 {
		t.Errorf("state=%s index=%d", c.State(), c.Index())
	}
	if eff.Countdown == 0 {
		t.Error("countdown not resumed")
	}
	if c.Countdown().Remaining() != 2 {
		t.Errorf("remaining = %d, want 2", c.Countdown().Remaining())
	}

	surface.fail = nil
	if _, err := c.SubmitOrTimeout(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.State() != StateAwaitingRecognition {
		t.Errorf("state = %s", c.State())
	}
}

func TestController_IgnoresUnmatchedAndStaleRecords(t *testing.T) {
	c, _, _ := newTestController(t)
	c.Start()
	label := c.CurrentLabel()
	eff, _ := c.SubmitOrTimeout()
	gen := eff.Sync.Generation

	eff, err := c.Handle(Event{Kind: EventRecognition, Generation: gen, Record: verdict("not-"+label, true)})
	if err != nil || eff.Resolved != nil {
		t.Fatalf("unmatched record: eff=%+v err=%v", eff, err)
	}
	eff, err = c.Handle(Event{Kind: EventRecognition, Generation: gen + 1, Record: verdict(label, true)})
	if err != nil || eff.Resolved != nil {
		t.Fatalf("stale generation: eff=%+v err=%v", eff, err)
	}
	if c.State() != StateAwaitingRecognition {
		t.Fatalf("state = %s", c.State())
	}

	eff, _ = c.Handle(Event{Kind: EventRecognition, Generation: gen, Record: verdict(label, true)})
	if eff.Resolved == nil {
		t.Fatal("matching record not applied")
	}
	// The same poll cannot resolve twice.
	if c.Polling(gen) {
		t.Error("old sync generation still active")
	}
}

func TestController_RecognitionTimeoutMarksUnresolved(t *testing.T) {
	c, _, ws := newTestController(t)
	c.recognitionTimeout = time.Minute
	c.Start()
	eff, _ := c.SubmitOrTimeout()
	if eff.Sync.Timeout != time.Minute {
		t.Errorf("sync timeout = %v", eff.Sync.Timeout)
	}

	eff, err := c.Handle(Event{Kind: EventRecognitionTimeout, Generation: eff.Sync.Generation})
	if err != nil {
		t.Fatal(err)
	}
	if eff.Resolved == nil || eff.Resolved.Outcome != OutcomeUnresolved {
		t.Fatalf("resolved = %+v", eff.Resolved)
	}
	if c.Index() != 1 || c.State() != StateAwaitingDrawing {
		t.Errorf("index=%d state=%s", c.Index(), c.State())
	}
	if len(ws.discarded) != 1 || ws.discarded[0] != eff.Resolved.ArtifactPath {
		t.Errorf("discarded = %v, want the unanswered artifact %s", ws.discarded, eff.Resolved.ArtifactPath)
	}
}

func TestController_VerdictKeepsArtifact(t *testing.T) {
	c, _, ws := newTestController(t)
	c.Start()
	c.SubmitOrTimeout()
	if _, err := c.RecognitionArrived(verdict(c.CurrentLabel(), true)); err != nil {
		t.Fatal(err)
	}
	if len(ws.discarded) != 0 {
		t.Errorf("discarded = %v, answered artifacts belong to the classifier", ws.discarded)
	}
}

func TestController_QuitMarksPendingUnresolved(t *testing.T) {
	c, _, ws := newTestController(t)
	c.Start()
	c.SubmitOrTimeout()

	eff, err := c.Quit()
	if err != nil {
		t.Fatal(err)
	}
	if !eff.Terminated || !eff.Purged {
		t.Errorf("effects = %+v", eff)
	}
	if c.State() != StateTerminated {
		t.Errorf("state = %s", c.State())
	}
	if got := c.Session().Attempts[0].Outcome; got != OutcomeUnresolved {
		t.Errorf("outcome = %s, want unresolved", got)
	}
	if c.Session().Status != StatusDone {
		t.Errorf("status = %s", c.Session().Status)
	}

	eff, err = c.Quit()
	if err != nil || eff.Terminated {
		t.Errorf("second quit: eff=%+v err=%v", eff, err)
	}
	if ws.purges != 1 {
		t.Errorf("purges = %d, want 1", ws.purges)
	}
}

func TestController_ResetOnlyFromSummary(t *testing.T) {
	c := NewController(Options{
		Pool:      []string{"star"},
		Questions: 1,
		Surface:   &fakeSurface{},
		Workspace: &fakeWorkspace{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if _, err := c.Reset(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reset from idle: err = %v", err)
	}

	c.Start()
	eff, _ := c.SubmitOrTimeout()
	c.Handle(Event{Kind: EventRecognition, Generation: eff.Sync.Generation, Record: verdict("star", false)})
	if c.State() != StateSummary {
		t.Fatalf("state = %s", c.State())
	}

	eff, err := c.Reset()
	if err != nil || !eff.Purged {
		t.Fatalf("reset: eff=%+v err=%v", eff, err)
	}
	if c.State() != StateIdle || c.Session() != nil {
		t.Errorf("state=%s session=%v", c.State(), c.Session())
	}
	if _, err := c.Start(); err != nil {
		t.Errorf("start after reset: %v", err)
	}
}

func TestController_StartFailsOnSmallPool(t *testing.T) {
	c := NewController(Options{Pool: []string{"a", "b"}, Questions: 6})
	_, err := c.Start()
	var insufficient *InsufficientPoolError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %s", c.State())
	}
}
