package app

import (
	"context"
	"errors"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/state"
	"github.com/campus-events/tui/internal/theme"
	"github.com/campus-events/tui/internal/views/auth"
	"github.com/campus-events/tui/internal/views/debug"
	"github.com/campus-events/tui/internal/views/detail"
	"github.com/campus-events/tui/internal/views/events"
	"github.com/campus-events/tui/internal/views/form"
	"github.com/campus-events/tui/internal/views/status"
	"github.com/campus-events/tui/internal/views/students"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayDebug
)

// Operation names carried by opDoneMsg.
const (
	opLogin       = "login"
	opRegister    = "register"
	opRefresh     = "refresh"
	opSubmit      = "submit"
	opDelete      = "delete"
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
)

// resumedMsg reports the outcome of restoring a persisted session.
type resumedMsg struct{ ok bool }

// opDoneMsg is sent when a state command returns.
type opDoneMsg struct {
	op  string
	err error
}

// Model is the root Bubble Tea model.
type Model struct {
	state  *state.State
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	// Last state copy; refreshed after every message.
	frame state.Frame

	overlay Overlay

	// Sub-views.
	statusBar   status.Model
	auth        auth.Model
	events      events.Model
	students    students.Model
	eventForm   form.Model
	studentForm form.Model
	debug       debug.Model
}

// New creates the root model.
func New(st *state.State, log zerolog.Logger) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		state:     st,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		auth:      auth.New(),
		events:    events.New(),
		students:  students.New(),
		eventForm: form.New("New event",
			form.Field{Label: "Title"},
			form.Field{Label: "Description", Placeholder: "Markdown allowed"},
			form.Field{Label: "Date", Placeholder: state.InputDateLayout + " (UTC)"},
			form.Field{Label: "Location"},
		),
		studentForm: form.New("New student",
			form.Field{Label: "First name"},
			form.Field{Label: "Last name"},
			form.Field{Label: "Email"},
		),
		debug: debug.New(),
	}
	m.eventForm.Hint = "enter: save  tab: next field  esc: leave form"
	m.studentForm.Hint = "enter: save  tab: next field  esc: leave form"
	m.auth.Show(state.ModeLogin)
	m.frame = st.Frame()
	return m
}

// Init restores a persisted session and starts the spinner.
func (m Model) Init() tea.Cmd {
	ctx, st := m.ctx, m.state
	resume := func() tea.Msg {
		return resumedMsg{ok: st.Resume(ctx)}
	}
	return tea.Batch(resume, m.statusBar.Tick(), m.auth.Active(state.ModeLogin).Focus())
}

// run executes fn off the UI loop and reports back with an opDoneMsg.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.sync()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.auth.Width = msg.Width
		m.auth.Height = msg.Height - 3
		m.events.Width = msg.Width
		m.students.Width = msg.Width
		m.events.Height = msg.Height - 6
		m.students.Height = msg.Height - 6
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		return m, cmd

	case resumedMsg:
		if msg.ok {
			m.debug.Add(debug.KindAuth, "session restored")
		}
		return m, nil

	case opDoneMsg:
		return m.handleDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// sync pulls a fresh frame and keeps view state consistent with it.
func (m *Model) sync() {
	m.frame = m.state.Frame()
	m.events.Clamp(len(m.frame.Events))
	m.students.Move(0, len(m.frame.Students))

	// Blurred forms mirror the state; focused ones push into it.
	if !m.studentForm.Focused() {
		sf := m.frame.StudentEdit.Form
		m.studentForm.SetValues(sf.FirstName, sf.LastName, sf.Email)
	}
	if !m.eventForm.Focused() {
		ef := m.frame.EventEdit.Form
		m.eventForm.SetValues(ef.Title, ef.Description, ef.Date, ef.Location)
	}
	if !m.frame.SignedIn {
		m.overlay = OverlayNone
		m.studentForm.Blur()
		m.eventForm.Blur()
	}
}

func (m Model) handleDone(msg opDoneMsg) (Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, state.ErrBusy):
		m.debug.Addf(debug.KindNav, "%s ignored: %v", msg.op, msg.err)
		return m, nil
	case msg.err != nil:
		m.debug.Addf(debug.KindErr, "%s: %s", msg.op, errText(msg.err))
	default:
		m.debug.Addf(debug.KindAPI, "%s ok", msg.op)
	}

	switch msg.op {
	case opLogin:
		f := m.state.Frame()
		if f.SignedIn {
			m.events.Cursor = 0
			m.students.Cursor = 0
			// Drops the typed password from the inputs.
			m.auth.Sync(f)
			m.debug.Addf(debug.KindAuth, "signed in as %s", f.Session.User.Name)
		}
	case opRegister:
		if msg.err == nil {
			m.auth.Sync(m.state.Frame())
			return m, m.auth.Show(state.ModeLogin)
		}
	case opSubmit:
		// A saved form is reset by the state, even when the refresh after
		// it failed. Leave the form once that happened.
		f := m.state.Frame()
		if f.StudentEdit == (state.StudentEditor{}) {
			m.studentForm.Blur()
		}
		if f.EventEdit == (state.EventEditor{}) {
			m.eventForm.Blur()
		}
	}
	return m, nil
}

func errText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}
	if !m.frame.SignedIn {
		return m.handleAuthKey(msg)
	}
	if m.overlay != OverlayNone {
		return m.handleOverlayKey(msg)
	}
	if f := m.activeForm(); f.Focused() {
		return m.handleFormKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) quit() (Model, tea.Cmd) {
	m.log.Info().Msg("quit")
	m.cancel()
	return m, tea.Quit
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	mode := m.frame.Mode
	switch {
	case key.Matches(msg, m.keys.SwitchAuth):
		next := state.ModeRegister
		if mode == state.ModeRegister {
			next = state.ModeLogin
		}
		m.state.SetAuthMode(next)
		m.debug.Addf(debug.KindNav, "auth mode %s", modeName(next))
		return m, m.auth.Show(next)

	case key.Matches(msg, m.keys.NextField):
		return m, m.auth.Active(mode).Next()

	case key.Matches(msg, m.keys.PrevField):
		return m, m.auth.Active(mode).Prev()

	case key.Matches(msg, m.keys.Enter):
		m.pushAuth(mode)
		if mode == state.ModeRegister {
			return m, m.run(opRegister, m.state.Register)
		}
		return m, m.run(opLogin, m.state.Login)
	}

	var cmd tea.Cmd
	active := m.auth.Active(mode)
	*active, cmd = active.Update(msg)
	m.pushAuth(mode)
	return m, cmd
}

func modeName(mode state.AuthMode) string {
	if mode == state.ModeRegister {
		return "register"
	}
	return "sign in"
}

func (m Model) pushAuth(mode state.AuthMode) {
	if mode == state.ModeRegister {
		v := m.auth.Register.Values()
		m.state.UpdateRegister(func(f *state.RegisterForm) {
			f.Name, f.Email, f.Password = v[0], v[1], v[2]
		})
		return
	}
	v := m.auth.Login.Values()
	m.state.UpdateLogin(func(f *state.LoginForm) {
		f.Email, f.Password = v[0], v[1]
	})
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		m.overlay = OverlayNone
		return m, nil
	}
	switch m.overlay {
	case OverlayDebug:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		case key.Matches(msg, m.keys.Debug):
			m.overlay = OverlayNone
		}
		return m, nil

	case OverlayDetail:
		// Event actions stay available while the detail is open.
		switch {
		case key.Matches(msg, m.keys.Subscribe, m.keys.Unsubscribe, m.keys.PrevStudent, m.keys.NextStudent, m.keys.Delete):
			return m.handleListKey(msg)
		case key.Matches(msg, m.keys.Edit):
			m.overlay = OverlayNone
			return m.handleListKey(msg)
		}
	}
	return m, nil
}

func (m *Model) activeForm() *form.Model {
	if m.frame.Tab == state.TabStudents {
		return &m.studentForm
	}
	return &m.eventForm
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.activeForm()
	switch {
	case key.Matches(msg, m.keys.Escape):
		f.Blur()
		if m.frame.Tab == state.TabStudents && m.frame.StudentEdit.Editing() {
			m.state.CancelStudentEdit()
		}
		if m.frame.Tab == state.TabEvents && m.frame.EventEdit.Editing() {
			m.state.CancelEventEdit()
		}
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		return m, f.Next()

	case key.Matches(msg, m.keys.PrevField):
		return m, f.Prev()

	case key.Matches(msg, m.keys.Enter):
		m.pushForm()
		if m.frame.Tab == state.TabStudents {
			return m, m.run(opSubmit, m.state.SubmitStudent)
		}
		return m, m.run(opSubmit, m.state.SubmitEvent)
	}

	var cmd tea.Cmd
	*f, cmd = f.Update(msg)
	m.pushForm()
	return m, cmd
}

func (m Model) pushForm() {
	if m.frame.Tab == state.TabStudents {
		v := m.studentForm.Values()
		m.state.UpdateStudentForm(func(f *state.StudentForm) {
			f.FirstName, f.LastName, f.Email = v[0], v[1], v[2]
		})
		return
	}
	v := m.eventForm.Values()
	m.state.UpdateEventForm(func(f *state.EventForm) {
		f.Title, f.Description, f.Date, f.Location = v[0], v[1], v[2], v[3]
	})
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.frame
	onEvents := f.Tab == state.TabEvents
	ev, hasEvent := m.events.Selected(f.Events)
	st, hasStudent := m.students.Selected(f.Students)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Tab):
		next := state.TabStudents
		if !onEvents {
			next = state.TabEvents
		}
		m.state.SetTab(next)
		m.debug.Addf(debug.KindNav, "tab %s", next)
		return m, nil

	case key.Matches(msg, m.keys.Events):
		m.state.SetTab(state.TabEvents)
		return m, nil

	case key.Matches(msg, m.keys.Students):
		m.state.SetTab(state.TabStudents)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if onEvents {
			m.events.Move(1, len(f.Events))
		} else {
			m.students.Move(1, len(f.Students))
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if onEvents {
			m.events.Move(-1, len(f.Events))
		} else {
			m.students.Move(-1, len(f.Students))
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if onEvents && hasEvent {
			m.overlay = OverlayDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.debug.Add(debug.KindAPI, "refresh requested")
		return m, m.run(opRefresh, m.state.Refresh)

	case key.Matches(msg, m.keys.Logout):
		if err := m.state.Logout(); err != nil {
			m.debug.Addf(debug.KindErr, "logout: %v", err)
		}
		m.debug.Add(debug.KindAuth, "signed out")
		m.overlay = OverlayNone
		m.state.SetAuthMode(state.ModeLogin)
		m.auth.Sync(m.state.Frame())
		return m, m.auth.Show(state.ModeLogin)

	case key.Matches(msg, m.keys.Escape):
		if onEvents && f.EventEdit.Editing() {
			m.state.CancelEventEdit()
		}
		if !onEvents && f.StudentEdit.Editing() {
			m.state.CancelStudentEdit()
		}
		return m, nil
	}

	if onEvents {
		switch {
		case key.Matches(msg, m.keys.Subscribe) && hasEvent:
			return m, m.run(opSubscribe, func(ctx context.Context) error {
				return m.state.Subscribe(ctx, ev.ID)
			})
		case key.Matches(msg, m.keys.Unsubscribe) && hasEvent:
			return m, m.run(opUnsubscribe, func(ctx context.Context) error {
				return m.state.Unsubscribe(ctx, ev.ID)
			})
		case key.Matches(msg, m.keys.NextStudent) && hasEvent:
			m.state.CycleSelection(ev.ID, 1)
			return m, nil
		case key.Matches(msg, m.keys.PrevStudent) && hasEvent:
			m.state.CycleSelection(ev.ID, -1)
			return m, nil
		}
	}

	// Everything below is admin-only.
	if !f.IsAdmin() {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.New):
		return m, m.activeForm().Focus()

	case key.Matches(msg, m.keys.Edit):
		if onEvents && hasEvent {
			if err := m.state.EditEvent(ev.ID); err != nil {
				return m, nil
			}
			m.frame = m.state.Frame()
			ef := m.frame.EventEdit.Form
			m.eventForm.SetValues(ef.Title, ef.Description, ef.Date, ef.Location)
			return m, m.eventForm.Focus()
		}
		if !onEvents && hasStudent {
			if err := m.state.EditStudent(st.ID); err != nil {
				return m, nil
			}
			m.frame = m.state.Frame()
			sf := m.frame.StudentEdit.Form
			m.studentForm.SetValues(sf.FirstName, sf.LastName, sf.Email)
			return m, m.studentForm.Focus()
		}

	case key.Matches(msg, m.keys.Delete):
		if onEvents && hasEvent {
			return m, m.run(opDelete, func(ctx context.Context) error {
				return m.state.CancelEvent(ctx, ev.ID)
			})
		}
		if !onEvents && hasStudent {
			return m, m.run(opDelete, func(ctx context.Context) error {
				return m.state.DeleteStudent(ctx, st.ID)
			})
		}
	}
	return m, nil
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	f := m.frame

	if !f.SignedIn {
		return lipgloss.JoinVertical(lipgloss.Left, m.statusBar.View(f), m.auth.View(f))
	}

	var body string
	switch m.overlay {
	case OverlayDebug:
		body = m.debug.View(m.width, m.height-4)
	case OverlayDetail:
		body = m.detailView()
	default:
		if f.Tab == state.TabStudents {
			body = m.students.View(f, m.studentForm)
		} else {
			body = m.events.View(f, m.eventForm)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(f),
		body,
		theme.StyleDimmed.Render("  "+m.help()),
	)
}

func (m Model) detailView() string {
	f := m.frame
	ev, ok := m.events.Selected(f.Events)
	if !ok {
		return ""
	}
	var selected *client.Student
	if id, ok := f.Selection[ev.ID]; ok {
		for _, st := range f.Students {
			if st.ID == id {
				selected = &st
				break
			}
		}
	}
	return detail.New(ev, selected, f.IsAdmin()).View()
}

func (m Model) help() string {
	switch {
	case m.overlay != OverlayNone:
		return "esc:close"
	case m.activeForm().Focused():
		return "enter:save  tab:next field  esc:leave form"
	case m.frame.Tab == state.TabStudents && m.frame.IsAdmin():
		return "j/k:navigate  tab:events  n:new  e:edit  x:delete  r:refresh  d:debug  L:sign out  q:quit"
	case m.frame.Tab == state.TabStudents:
		return "j/k:navigate  tab:events  r:refresh  d:debug  L:sign out  q:quit"
	case m.frame.IsAdmin():
		return "j/k:navigate  tab:students  enter:detail  [/]:student  s/u:(un)subscribe  n:new  e:edit  x:cancel  r:refresh  d:debug  L:sign out  q:quit"
	default:
		return "j/k:navigate  tab:students  enter:detail  [/]:student  s/u:(un)subscribe  r:refresh  d:debug  L:sign out  q:quit"
	}
}
