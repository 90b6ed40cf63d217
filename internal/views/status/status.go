package status

import (
	"fmt"
	"time"

	"github.com/campus-events/tui/internal/state"
	"github.com/campus-events/tui/internal/theme"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the status bar state.
type Model struct {
	Spinner spinner.Model
	Width   int
	now     func() time.Time
}

// New creates a status bar model.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorFocus)
	return Model{Spinner: sp, now: time.Now}
}

// Tick starts the spinner animation.
func (m Model) Tick() tea.Cmd {
	return m.Spinner.Tick
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.Spinner, cmd = m.Spinner.Update(msg)
	return m, cmd
}

// View renders the status bar.
func (m Model) View(f state.Frame) string {
	width := m.Width
	if width < 40 {
		width = 40
	}
	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")

	var who string
	if f.SignedIn {
		who = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● "+f.Session.User.Name) +
			" " + theme.RoleBadge(string(f.Session.User.Role))
		if exp, ok := f.Session.ExpiresAt(); ok {
			who += theme.StyleDimmed.Render(" " + expiry(exp, m.now()))
		}
	} else {
		who = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Signed out")
	}

	content := who
	if f.SignedIn {
		content += sep + tabs(f.Tab)
	}

	switch {
	case f.Status.Pending || f.Loading:
		label := "Loading..."
		if f.Status.Pending {
			label = "Working..."
		}
		content += sep + m.Spinner.View() + " " + label
	case f.Status.Err != "":
		content += sep + theme.StyleError.Render(f.Status.Err)
		if f.Status.Notice != "" {
			content += sep + theme.StyleNotice.Render(f.Status.Notice)
		}
	case f.Status.Notice != "":
		content += sep + theme.StyleNotice.Render(f.Status.Notice)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func tabs(active state.Tab) string {
	out := ""
	for _, t := range []state.Tab{state.TabEvents, state.TabStudents} {
		style := theme.StyleTab
		if t == active {
			style = theme.StyleTabActive
		}
		out += style.Render(t.String())
	}
	return out
}

func expiry(exp, now time.Time) string {
	d := exp.Sub(now)
	switch {
	case d <= 0:
		return "session expired"
	case d < time.Hour:
		return fmt.Sprintf("expires in %dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("expires in %dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
