package summary

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/sketchquiz/internal/quiz"
	"github.com/abhisek/sketchquiz/internal/screen"
	report "github.com/abhisek/sketchquiz/internal/summary"
	"github.com/abhisek/sketchquiz/internal/ui/components"
	"github.com/abhisek/sketchquiz/internal/ui/layout"
	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

const (
	thumbWidth  = 24
	thumbHeight = 8
	labelWidth  = 12
)

// Actions are the commands behind the summary buttons. Each may be nil.
type Actions struct {
	PlayAgain func() tea.Cmd
	Exit      func() tea.Cmd
	Home      func() tea.Cmd
}

// SummaryScreen displays the end-of-session report.
type SummaryScreen struct {
	summary *report.Summary
	actions Actions

	cursor  int // selected row
	button  int // index into buttons
	buttons []components.Button
	thumbs  map[int]string
}

const buttonWidth = 16

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(sum *report.Summary, actions Actions) *SummaryScreen {
	if sum == nil {
		sum = &report.Summary{}
	}
	s := &SummaryScreen{
		summary: sum,
		actions: actions,
		thumbs:  make(map[int]string),
		buttons: []components.Button{
			components.NewButton("PLAY AGAIN", buttonWidth, func() tea.Cmd { return call(actions.PlayAgain) }),
			components.NewButton("EXIT", buttonWidth, func() tea.Cmd { return call(actions.Exit) }),
		},
	}
	s.focus(0)
	return s
}

func (s *SummaryScreen) focus(i int) {
	s.button = i
	for j := range s.buttons {
		s.buttons[j].Active = j == i
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) Status() string {
	return fmt.Sprintf("%d/%d", s.summary.Correct, s.summary.Total)
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Drawings"},
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Home"},
	}
}

// Selected returns the highlighted row index and button index.
func (s *SummaryScreen) Selected() (row, button int) {
	return s.cursor, s.button
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.summary.Rows)-1 {
			s.cursor++
		}
	case "left", "h", "shift+tab":
		s.focus((s.button + len(s.buttons) - 1) % len(s.buttons))
	case "right", "l", "tab":
		s.focus((s.button + 1) % len(s.buttons))
	case "enter", "space", " ":
		var cmd tea.Cmd
		s.buttons[s.button], cmd = s.buttons[s.button].Update(msg)
		return s, cmd
	case "q":
		return s, call(s.actions.Exit)
	case "esc":
		return s, call(s.actions.Home)
	}
	return s, nil
}

func call(f func() tea.Cmd) tea.Cmd {
	if f == nil {
		return nil
	}
	return f()
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary

	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Game over!"))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("%s   %s   %s",
		theme.Correct.Render(fmt.Sprintf("✓ %d", sum.Correct)),
		theme.Incorrect.Render(fmt.Sprintf("✗ %d", sum.Incorrect)),
		theme.Unresolved.Render(fmt.Sprintf("? %d", sum.Unresolved)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, stats))
	b.WriteString("\n")
	accuracy := components.NewProgressBar("Accuracy", sum.Accuracy(), true, 40)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, accuracy.View()))
	b.WriteString("\n\n")

	if len(sum.Rows) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("No verdicts were recorded.")))
		b.WriteString("\n\n")
	} else {
		body := lipgloss.JoinHorizontal(lipgloss.Top, s.renderRows(), "  ", s.renderThumb())
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
		b.WriteString("\n\n")
	}

	views := make([]string, 0, 2*len(s.buttons))
	for i, btn := range s.buttons {
		if i > 0 {
			views = append(views, "  ")
		}
		views = append(views, btn.View())
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, views...)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))
	return b.String()
}

// renderRows lays the verdicts out as a table. Labels are clipped so the
// table keeps a fixed width next to the thumbnail.
func (s *SummaryScreen) renderRows() string {
	rows := s.summary.Rows
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		BorderColumn(false).
		Headers("", "#", "PROMPT", "GUESS", "CONF").
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return cell.Foreground(theme.TextDim).Bold(true)
			}
			if col == 0 {
				return cell.Inherit(theme.Selected)
			}
			if row >= 0 && row < len(rows) {
				return cell.Inherit(outcomeStyle(rows[row].Outcome))
			}
			return cell
		})

	for i, r := range rows {
		marker := " "
		if i == s.cursor {
			marker = "▸"
		}
		predicted := r.PredictedLabel
		if predicted == "" {
			predicted = "-"
		}
		conf := "-"
		if r.HasConfidence {
			conf = fmt.Sprintf("%.0f%%", r.Confidence*100)
		}
		t.Row(marker, strconv.Itoa(r.QuestionNumber), clip(r.Prompt), clip(predicted), conf)
	}
	return t.Render()
}

func clip(label string) string {
	return ansi.Truncate(label, labelWidth, "…")
}

func (s *SummaryScreen) renderThumb() string {
	if s.cursor >= len(s.summary.Rows) {
		return ""
	}
	thumb, ok := s.thumbs[s.cursor]
	if !ok {
		thumb = report.Thumbnail(s.summary.Rows[s.cursor], thumbWidth, thumbHeight)
		s.thumbs[s.cursor] = thumb
	}
	if thumb == "" {
		thumb = lipgloss.NewStyle().
			Width(thumbWidth).
			Height(thumbHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render("no image")
	}
	return theme.CanvasFrame.Render(thumb)
}

func outcomeStyle(o quiz.Outcome) lipgloss.Style {
	switch o {
	case quiz.OutcomeCorrect:
		return lipgloss.NewStyle().Foreground(theme.Success)
	case quiz.OutcomeIncorrect:
		return lipgloss.NewStyle().Foreground(theme.Error)
	case quiz.OutcomeUnresolved:
		return lipgloss.NewStyle().Foreground(theme.Warning)
	}
	return lipgloss.NewStyle().Foreground(theme.Text)
}
