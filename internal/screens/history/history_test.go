package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sketchquiz/internal/store"
)

type fakeRepo struct {
	sessions []store.SessionSummary
	attempts map[string][]store.AttemptRecord
	queried  int
}

func (f *fakeRepo) AppendSessionEvent(context.Context, store.SessionEventData) error { return nil }
func (f *fakeRepo) AppendAttemptEvent(context.Context, store.AttemptEventData) error { return nil }

func (f *fakeRepo) QuerySessionSummaries(context.Context, store.QueryOpts) ([]store.SessionSummary, error) {
	return f.sessions, nil
}

func (f *fakeRepo) QueryAttempts(_ context.Context, id string) ([]store.AttemptRecord, error) {
	f.queried++
	return f.attempts[id], nil
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		sessions: []store.SessionSummary{
			{SessionID: "a", Action: store.ActionEnd, Timestamp: time.Now(), Questions: 6, Correct: 4, DurationSecs: 95},
			{SessionID: "b", Action: store.ActionQuit, Timestamp: time.Now(), Questions: 6, Correct: 1},
		},
		attempts: map[string][]store.AttemptRecord{
			"a": {{SessionID: "a", Position: 0, Label: "cat", PredictedClass: "dog", Outcome: "incorrect"}},
		},
	}
}

func run(s *HistoryScreen, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	s.Update(cmd())
}

func TestHistory_LoadsAndRenders(t *testing.T) {
	s := New(newRepo())
	run(s, s.Init())

	view := s.View(100, 24)
	if !strings.Contains(view, "4/6 correct") {
		t.Errorf("view missing first game:\n%s", view)
	}
	if !strings.Contains(view, "(quit)") {
		t.Error("quit games should be marked")
	}
}

func TestHistory_Empty(t *testing.T) {
	s := New(&fakeRepo{})
	run(s, s.Init())
	if !strings.Contains(s.View(100, 24), "No games yet") {
		t.Error("expected empty message")
	}
}

func TestHistory_ExpandLoadsAttemptsOnce(t *testing.T) {
	repo := newRepo()
	s := New(repo)
	run(s, s.Init())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)
	if !strings.Contains(s.View(100, 24), "dog") {
		t.Error("expanded view should list attempts")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	run(s, cmd)
	if repo.queried != 1 {
		t.Errorf("queried = %d, want 1", repo.queried)
	}
}

func TestHistory_Navigation(t *testing.T) {
	s := New(newRepo())
	run(s, s.Init())
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Error("esc should pop")
	}
}
