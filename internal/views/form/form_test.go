package form

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestTypingGoesToFocusedField(t *testing.T) {
	m := New("Sign in", Field{Label: "Email"}, Field{Label: "Password", Secret: true})

	m = typeText(m, "ignored")
	require.Equal(t, []string{"", ""}, m.Values(), "a blurred form ignores keys")

	m.Focus()
	m = typeText(m, "a@b.com")
	m.Next()
	m = typeText(m, "secret")
	require.Equal(t, []string{"a@b.com", "secret"}, m.Values())
	require.Equal(t, 1, m.FocusIndex())
}

func TestFocusWraps(t *testing.T) {
	m := New("x", Field{Label: "a"}, Field{Label: "b"}, Field{Label: "c"})
	m.Focus()
	m.Prev()
	require.Equal(t, 2, m.FocusIndex())
	m.Next()
	require.Equal(t, 0, m.FocusIndex())
}

func TestSetValues(t *testing.T) {
	m := New("x", Field{Label: "a"}, Field{Label: "b"})
	m.SetValues("one", "two", "three")
	require.Equal(t, []string{"one", "two"}, m.Values())
	m.SetValues("only")
	require.Equal(t, []string{"only", ""}, m.Values())
}

func TestViewMasksSecrets(t *testing.T) {
	m := New("Sign in", Field{Label: "Email"}, Field{Label: "Password", Secret: true})
	m.Width = 60
	m.SetValues("a@b.com", "hunter2")
	v := m.View()
	require.True(t, strings.Contains(v, "a@b.com"))
	require.False(t, strings.Contains(v, "hunter2"))
	require.True(t, strings.Contains(v, "Sign in"))
}
