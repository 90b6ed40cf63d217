// Package auth renders the signed-out screen: the sign-in and sign-up
// forms and the status messages that belong to them.
package auth

import (
	"github.com/campus-events/tui/internal/state"
	"github.com/campus-events/tui/internal/theme"
	"github.com/campus-events/tui/internal/views/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const panelWidth = 56

// Model holds both forms; only the one matching the mode is shown.
type Model struct {
	Login    form.Model
	Register form.Model
	Width    int
	Height   int
}

// New creates the two forms.
func New() Model {
	login := form.New("Sign in",
		form.Field{Label: "Email", Placeholder: "you@campus.edu"},
		form.Field{Label: "Password", Secret: true},
	)
	login.Hint = "enter: sign in  tab: next field  ctrl+r: create account"

	register := form.New("Create account",
		form.Field{Label: "Name", Placeholder: "Ada Lovelace"},
		form.Field{Label: "Email", Placeholder: "you@campus.edu"},
		form.Field{Label: "Password", Secret: true},
	)
	register.Hint = "enter: register  tab: next field  ctrl+r: back to sign in"

	return Model{Login: login, Register: register}
}

// Active returns the form shown for mode.
func (m *Model) Active(mode state.AuthMode) *form.Model {
	if mode == state.ModeRegister {
		return &m.Register
	}
	return &m.Login
}

// Show focuses the form for mode and blurs the other.
func (m *Model) Show(mode state.AuthMode) tea.Cmd {
	m.Login.Blur()
	m.Register.Blur()
	return m.Active(mode).Focus()
}

// Sync copies the state's form fields into the inputs.
func (m *Model) Sync(f state.Frame) {
	m.Login.SetValues(f.Login.Email, f.Login.Password)
	m.Register.SetValues(f.Register.Name, f.Register.Email, f.Register.Password)
}

// View renders the signed-out screen.
func (m Model) View(f state.Frame) string {
	title := theme.StyleHeader.Render("Campus Events")
	subtitle := theme.StyleDimmed.Render("Sign in to manage students and events.")

	active := m.Login
	if f.Mode == state.ModeRegister {
		active = m.Register
	}
	active.Width = panelWidth

	sections := []string{title, subtitle, "", active.View()}
	switch {
	case f.Status.Pending:
		sections = append(sections, "", theme.StyleDimmed.Render("Please wait..."))
	case f.Status.Err != "":
		sections = append(sections, "", theme.StyleError.Render(f.Status.Err))
	case f.Status.Notice != "":
		sections = append(sections, "", theme.StyleNotice.Render(f.Status.Notice))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.Width == 0 || m.Height == 0 {
		return body
	}
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, body)
}
