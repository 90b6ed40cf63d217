// Package detail renders the event detail overlay. Descriptions are
// rendered as Markdown.
package detail

import (
	"strings"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/theme"
	"github.com/campus-events/tui/internal/views/events"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth = 72
	labelWidth = 12
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)
)

// Model holds the event shown in the overlay.
type Model struct {
	Event    *client.Event
	Selected *client.Student
	Admin    bool
}

// New creates a detail model for ev.
func New(ev client.Event, selected *client.Student, admin bool) Model {
	return Model{Event: &ev, Selected: selected, Admin: admin}
}

// View renders the panel. It is empty when no event is set.
func (m Model) View() string {
	if m.Event == nil {
		return ""
	}
	ev := m.Event

	var b strings.Builder
	b.WriteString(styleTitle.Render(ev.Title) + " " + theme.StatusBadge(string(ev.Status)) + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	writeRow(&b, "ID", ev.ID.String())
	writeRow(&b, "Date", events.FormatDate(ev.Date))
	if ev.Location != "" {
		writeRow(&b, "Location", ev.Location)
	}
	student := "none"
	if m.Selected != nil {
		student = m.Selected.FullName() + " <" + m.Selected.Email + ">"
	}
	writeRow(&b, "Student", student)

	b.WriteString("\n")
	if strings.TrimSpace(ev.Description) == "" {
		b.WriteString(theme.StyleDimmed.Render("No description.") + "\n")
	} else {
		b.WriteString(RenderMarkdown(ev.Description, panelWidth-4) + "\n")
	}

	footer := "[s] subscribe  [u] unsubscribe  [ / ] choose student  [esc] close"
	if m.Admin {
		footer = "[e] edit  [x] cancel event  " + footer
	}
	b.WriteString("\n" + styleFooter.Render(footer))

	return stylePanel.Width(panelWidth).Render(b.String())
}

// RenderMarkdown renders md for a terminal of the given width. The raw
// text is returned if rendering fails.
func RenderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}
