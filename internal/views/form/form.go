// Package form is a vertical set of labelled text inputs with a single
// focused field.
package form

import (
	"strings"

	"github.com/campus-events/tui/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const labelWidth = 12

// Field describes one input.
type Field struct {
	Label       string
	Placeholder string
	Secret      bool
}

// Model holds the inputs and which one has focus. A blurred form ignores
// key input.
type Model struct {
	Title   string
	Hint    string
	labels  []string
	inputs  []textinput.Model
	focus   int
	focused bool
	Width   int
}

// New builds a blurred form with one input per field.
func New(title string, fields ...Field) Model {
	m := Model{Title: title}
	for _, f := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Placeholder
		in.CharLimit = 256
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.labels = append(m.labels, f.Label)
		m.inputs = append(m.inputs, in)
	}
	return m
}

// Focused reports whether the form receives key input.
func (m Model) Focused() bool { return m.focused }

// FocusIndex returns the index of the active field.
func (m Model) FocusIndex() int { return m.focus }

// Focus gives the form key input, starting at the first field.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.focusField(0)
}

// Blur releases key input.
func (m *Model) Blur() {
	m.focused = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// Next moves focus to the following field, wrapping around.
func (m *Model) Next() tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	return m.focusField((m.focus + 1) % len(m.inputs))
}

// Prev moves focus to the preceding field, wrapping around.
func (m *Model) Prev() tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	return m.focusField((m.focus - 1 + len(m.inputs)) % len(m.inputs))
}

func (m *Model) focusField(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i && m.focused {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

// Update forwards msg to the active input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused || len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// Values returns the field contents in declaration order.
func (m Model) Values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
	}
	return out
}

// SetValues replaces the field contents. Extra values are ignored and
// missing ones clear the field.
func (m *Model) SetValues(values ...string) {
	for i := range m.inputs {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		if m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
		}
	}
}

// View renders the form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render(m.Title) + "\n\n")

	inputWidth := m.Width - labelWidth - 6
	if inputWidth < 16 {
		inputWidth = 16
	}
	label := lipgloss.NewStyle().Foreground(theme.ColorDimmed).Width(labelWidth)
	active := label.Foreground(theme.ColorFocus)

	for i, in := range m.inputs {
		in.Width = inputWidth
		l := label
		if m.focused && i == m.focus {
			l = active
		}
		b.WriteString(l.Render(m.labels[i]) + in.View() + "\n")
	}
	if m.Hint != "" {
		b.WriteString("\n" + theme.StyleDimmed.Render(m.Hint))
	}

	style := theme.StyleBorder
	if m.focused {
		style = theme.StyleFocusedBorder
	}
	return style.Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}
