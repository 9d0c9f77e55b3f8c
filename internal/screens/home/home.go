package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sketchquiz/internal/router"
	"github.com/abhisek/sketchquiz/internal/screen"
	"github.com/abhisek/sketchquiz/internal/screens/history"
	sessionscreen "github.com/abhisek/sketchquiz/internal/screens/session"
	"github.com/abhisek/sketchquiz/internal/store"
	"github.com/abhisek/sketchquiz/internal/ui/components"
)

const (
	// recentGames is how many past games feed the stats bar.
	recentGames = 20

	menuButtonWidth = 22

	// Below these content sizes the mascot is hidden and the menu drops
	// its borders.
	compactWidth  = 100
	compactHeight = 26
)

// Stats are the dashboard numbers derived from history.
type Stats struct {
	Games        int
	BestAccuracy float64
	LastAccuracy float64
}

type statsLoadedMsg struct {
	Stats Stats
	Err   error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps          sessionscreen.Deps
	menu          components.Menu
	stats         Stats
	mascotVariant MascotVariant
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. History is disabled when deps carries no
// event repository.
func New(deps sessionscreen.Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "START GAME", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(deps)}
			}
		}},
		{Label: "HISTORY", Disabled: deps.EventRepo == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.EventRepo)}
			}
		}},
		{Label: "EXIT GAME", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps:          deps,
		menu:          components.NewMenu(items, menuButtonWidth),
		mascotVariant: MascotSleepy,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	repo := h.deps.EventRepo
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: recentGames})
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Stats: computeStats(sessions)}
	}
}

func computeStats(sessions []store.SessionSummary) Stats {
	var st Stats
	for _, s := range sessions {
		if s.Action != store.ActionEnd {
			continue
		}
		st.Games++
		acc := s.Accuracy()
		if acc > st.BestAccuracy {
			st.BestAccuracy = acc
		}
		// Sessions arrive newest first.
		if st.Games == 1 {
			st.LastAccuracy = acc
		}
	}
	return st
}

func variantFor(st Stats) MascotVariant {
	switch {
	case st.Games == 0:
		return MascotSleepy
	case st.LastAccuracy >= 0.8:
		return MascotCelebrating
	}
	return MascotIdle
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.Err == nil {
			h.stats = msg.Stats
			h.mascotVariant = variantFor(msg.Stats)
		} else if h.deps.Logger != nil {
			h.deps.Logger.Warn("load stats", "err", msg.Err)
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < compactHeight || width < compactWidth

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant, cw))
	}
	sections = append(sections, renderStatsBar(h.stats, cw, compact))
	sections = append(sections, h.menu.View(cw, compact))

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
