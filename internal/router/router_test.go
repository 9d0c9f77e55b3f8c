package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sketchquiz/internal/screen"
)

// stubScreen is a minimal screen for testing.
type stubScreen struct {
	title   string
	initRan bool
	closed  int
}

func (s *stubScreen) Close() error {
	s.closed++
	return nil
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestPush(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
	if r.Active().Title() != "first" {
		t.Errorf("expected active 'first', got %q", r.Active().Title())
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Replace(s2)

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after replace, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on replaced screen")
	}
}

func TestReplaceScreenMsg(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Update(ReplaceScreenMsg{Screen: s2})

	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run via ReplaceScreenMsg")
	}
}

func TestReplacePreservesStackDepth(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Replace(s3)

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" {
		t.Errorf("expected active 'third', got %q", r.Active().Title())
	}
}

func TestPopClosesScreen(t *testing.T) {
	r := New(&stubScreen{title: "root"})
	top := &stubScreen{title: "top"}
	r.Push(top)
	r.Update(PopScreenMsg{})

	if top.closed != 1 {
		t.Errorf("expected popped screen closed once, got %d", top.closed)
	}
}

func TestPopToRoot(t *testing.T) {
	root := &stubScreen{title: "root"}
	r := New(root)
	a, b := &stubScreen{title: "a"}, &stubScreen{title: "b"}
	r.Push(a)
	r.Push(b)

	r.Update(PopToRootMsg{})

	if r.Depth() != 1 || r.Active() != root {
		t.Errorf("expected only root left, depth %d", r.Depth())
	}
	if a.closed != 1 || b.closed != 1 {
		t.Errorf("closed counts a=%d b=%d", a.closed, b.closed)
	}
	if root.closed != 0 {
		t.Error("root closed by PopToRoot")
	}
}

func TestReplaceClosesPrevious(t *testing.T) {
	first := &stubScreen{title: "first"}
	r := New(first)
	r.Replace(&stubScreen{title: "second"})
	if first.closed != 1 {
		t.Errorf("replaced screen closed %d times", first.closed)
	}
}

func TestCloseAll(t *testing.T) {
	root := &stubScreen{title: "root"}
	r := New(root)
	top := &stubScreen{title: "top"}
	r.Push(top)
	r.CloseAll()
	if root.closed != 1 || top.closed != 1 {
		t.Errorf("closed root=%d top=%d", root.closed, top.closed)
	}
}
