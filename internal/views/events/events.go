// Package events renders the events tab: the admin form and the event
// list with the student staged for each event.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/state"
	"github.com/campus-events/tui/internal/theme"
	"github.com/campus-events/tui/internal/views/form"
	"github.com/charmbracelet/lipgloss"
)

const (
	rowHeight  = 2
	sideBySide = 110
	formWidth  = 48
)

// DisplayLayout is how event dates are shown in lists.
const DisplayLayout = "02/01/2006 15:04"

// Model holds the list cursor and the available area.
type Model struct {
	Cursor int
	Width  int
	Height int
}

// New creates an events tab model.
func New() Model {
	return Model{}
}

// Move shifts the cursor by delta, clamped to n rows.
func (m *Model) Move(delta, n int) {
	m.Cursor += delta
	m.Clamp(n)
}

// Clamp keeps the cursor inside n rows.
func (m *Model) Clamp(n int) {
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// Selected returns the event under the cursor.
func (m Model) Selected(list []client.Event) (client.Event, bool) {
	if m.Cursor < 0 || m.Cursor >= len(list) {
		return client.Event{}, false
	}
	return list[m.Cursor], true
}

// FormatDate renders a server date in local time. Empty values read as
// unknown and unparseable ones are shown as received.
func FormatDate(value string) string {
	if value == "" {
		return "Unknown date"
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return t.Local().Format(DisplayLayout)
}

// View renders the tab. editor is drawn only for admins.
func (m Model) View(f state.Frame, editor form.Model) string {
	if !f.IsAdmin() {
		return m.renderList(f, m.Width)
	}

	editor.Title = "New event"
	if f.EventEdit.Editing() {
		editor.Title = "Edit event #" + f.EventEdit.Target.String()
	}
	editor.Width = formWidth
	panel := editor.View()
	if m.Width >= sideBySide {
		return lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", m.renderList(f, m.Width-formWidth-2))
	}
	if m.Height > 0 {
		m.Height = max(m.Height-lipgloss.Height(panel), rowHeight)
	}
	return lipgloss.JoinVertical(lipgloss.Left, panel, m.renderList(f, m.Width))
}

func (m Model) renderList(f state.Frame, width int) string {
	header := theme.StyleHeader.Render(fmt.Sprintf("Events (%d)", len(f.Events)))
	if len(f.Events) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, theme.StyleDimmed.Render("  No events yet."))
	}

	start, end := window(m.Cursor, len(f.Events), m.Height/rowHeight)
	lines := []string{header}
	for i := start; i < end; i++ {
		lines = append(lines, m.renderEvent(f, f.Events[i], i == m.Cursor, width)...)
	}
	if end < len(f.Events) {
		lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("  ↓ %d more", len(f.Events)-end)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEvent(f state.Frame, ev client.Event, selected bool, width int) []string {
	title := ev.Title
	if selected {
		title = theme.StyleSelected.Render(title)
	}
	first := theme.Cursor(selected) + title + " " + theme.StatusBadge(string(ev.Status)) +
		"  " + theme.StyleDimmed.Render(FormatDate(ev.Date))
	if ev.Location != "" {
		first += theme.StyleDimmed.Render("  @ " + ev.Location)
	}
	if f.EventEdit.Target == ev.ID {
		first += lipgloss.NewStyle().Foreground(theme.ColorFocus).Render("  (editing)")
	}

	second := "    student: " + theme.StyleDimmed.Render("none")
	if id, ok := f.Selection[ev.ID]; ok {
		second = "    student: " + studentName(f.Students, id)
	}
	return []string{truncate(first, width), truncate(second, width)}
}

func studentName(list []client.Student, id client.ID) string {
	for _, st := range list {
		if st.ID == id {
			return st.FullName()
		}
	}
	return "#" + id.String()
}

// window returns the visible [start, end) slice of n rows holding cursor.
func window(cursor, n, visible int) (int, int) {
	if visible <= 0 || visible >= n {
		return 0, n
	}
	start := cursor - visible + 1
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > n {
		end = n
		start = end - visible
	}
	return start, end
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
