// Package students renders the students tab.
package students

import (
	"fmt"
	"strings"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/state"
	"github.com/campus-events/tui/internal/theme"
	"github.com/campus-events/tui/internal/views/form"
	"github.com/charmbracelet/lipgloss"
)

const (
	sideBySide = 100
	formWidth  = 48
)

// Model holds the list cursor and the available area.
type Model struct {
	Cursor int
	Width  int
	Height int
}

// New creates a students tab model.
func New() Model {
	return Model{}
}

// Move shifts the cursor by delta, clamped to n rows.
func (m *Model) Move(delta, n int) {
	m.Cursor += delta
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// Selected returns the student under the cursor.
func (m Model) Selected(list []client.Student) (client.Student, bool) {
	if m.Cursor < 0 || m.Cursor >= len(list) {
		return client.Student{}, false
	}
	return list[m.Cursor], true
}

// View renders the tab. editor is drawn only for admins.
func (m Model) View(f state.Frame, editor form.Model) string {
	if !f.IsAdmin() {
		return m.renderList(f)
	}

	editor.Title = "New student"
	if f.StudentEdit.Editing() {
		editor.Title = "Edit student #" + f.StudentEdit.Target.String()
	}
	editor.Width = formWidth
	panel := editor.View()
	if m.Width >= sideBySide {
		return lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", m.renderList(f))
	}
	if m.Height > 0 {
		m.Height = max(m.Height-lipgloss.Height(panel), 1)
	}
	return lipgloss.JoinVertical(lipgloss.Left, panel, m.renderList(f))
}

func (m Model) renderList(f state.Frame) string {
	header := theme.StyleHeader.Render(fmt.Sprintf("Students (%d)", len(f.Students)))
	if len(f.Students) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, theme.StyleDimmed.Render("  No students yet."))
	}

	visible := m.Height
	start := 0
	if visible > 0 && m.Cursor >= visible {
		start = m.Cursor - visible + 1
	}
	end := len(f.Students)
	if visible > 0 && start+visible < end {
		end = start + visible
	}

	lines := []string{header}
	for i := start; i < end; i++ {
		st := f.Students[i]
		name := st.FullName()
		if i == m.Cursor {
			name = theme.StyleSelected.Render(name)
		}
		line := theme.Cursor(i == m.Cursor) + name + "  " + theme.StyleDimmed.Render(st.Email)
		if f.StudentEdit.Target == st.ID {
			line += lipgloss.NewStyle().Foreground(theme.ColorFocus).Render("  (editing)")
		}
		lines = append(lines, line)
	}
	if end < len(f.Students) {
		lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("  ↓ %d more", len(f.Students)-end)))
	}
	return strings.Join(lines, "\n")
}
