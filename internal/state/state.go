// Package state is the client's application state: the auth forms, the
// mutation commands, edit mode per entity kind, the per-event subscription
// selection and the status line. Collections are owned by the entities
// synchronizer and the credential by the session store; State wires them
// together and never patches a collection itself.
package state

import (
	"context"
	"maps"
	"sync"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/entities"
	"github.com/campus-events/tui/internal/session"
	"github.com/rs/zerolog"
)

// API is the subset of the HTTP client the commands use.
type API interface {
	entities.Source
	Register(ctx context.Context, in client.RegisterRequest) error
	Login(ctx context.Context, in client.LoginRequest) (*client.LoginResponse, error)
	CreateStudent(ctx context.Context, token string, in client.StudentInput) error
	UpdateStudent(ctx context.Context, token string, id client.ID, in client.StudentInput) error
	DeleteStudent(ctx context.Context, token string, id client.ID) error
	CreateEvent(ctx context.Context, token string, in client.EventInput) error
	UpdateEvent(ctx context.Context, token string, id client.ID, in client.EventInput) error
	CancelEvent(ctx context.Context, token string, id client.ID) error
	Subscribe(ctx context.Context, token string, eventID, studentID client.ID) error
	Unsubscribe(ctx context.Context, token string, eventID, studentID client.ID) error
}

// Tab identifies the active dashboard tab.
type Tab int

const (
	TabEvents Tab = iota
	TabStudents
)

func (t Tab) String() string {
	if t == TabStudents {
		return "students"
	}
	return "events"
}

// Status describes the outcome of the most recent operation. Each new
// operation overwrites it.
type Status struct {
	Pending bool
	Err     string
	Notice  string
}

// State is shared between the UI loop and command goroutines; every field
// is guarded by mu and network calls happen with mu released.
type State struct {
	api      API
	sessions *session.Store
	entities *entities.Synchronizer
	log      zerolog.Logger

	mu          sync.Mutex
	epoch       uint64 // bumped on sign-out
	mode        AuthMode
	login       LoginForm
	register    RegisterForm
	tab         Tab
	studentEdit StudentEditor
	eventEdit   EventEditor
	selection   map[client.ID]client.ID
	status      Status
}

// New wires the state to its collaborators and registers the sign-out
// reset with the session store.
func New(api API, sessions *session.Store, snap *entities.Synchronizer, log zerolog.Logger) *State {
	s := &State{
		api:       api,
		sessions:  sessions,
		entities:  snap,
		log:       log,
		selection: make(map[client.ID]client.ID),
	}
	sessions.OnClear(s.reset)
	return s
}

// Frame is a consistent copy of everything the views render.
type Frame struct {
	Session  session.Session
	SignedIn bool

	Mode     AuthMode
	Login    LoginForm
	Register RegisterForm

	Tab         Tab
	Students    []client.Student
	Events      []client.Event
	Loading     bool
	StudentEdit StudentEditor
	EventEdit   EventEditor
	Selection   map[client.ID]client.ID
	Status      Status
}

// IsAdmin reports whether admin-only controls should be shown.
func (f Frame) IsAdmin() bool {
	return f.SignedIn && f.Session.User.IsAdmin()
}

// Frame returns a copy of the current state for rendering.
func (s *State) Frame() Frame {
	sess, signedIn := s.sessions.Current()
	students := s.entities.Students()
	events := s.entities.Events()
	loading := s.entities.Loading()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{
		Session:     sess,
		SignedIn:    signedIn,
		Mode:        s.mode,
		Login:       s.login,
		Register:    s.register,
		Tab:         s.tab,
		Students:    students,
		Events:      events,
		Loading:     loading,
		StudentEdit: s.studentEdit,
		EventEdit:   s.eventEdit,
		Selection:   maps.Clone(s.selection),
		Status:      s.status,
	}
}

// Status returns the current status line.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetTab switches the active dashboard tab.
func (s *State) SetTab(t Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = t
}

// Resume restores a persisted session and loads the collections for it.
// It reports whether a session was found.
func (s *State) Resume(ctx context.Context) bool {
	sess, ok := s.sessions.Restore()
	if !ok {
		return false
	}
	s.log.Info().Str("user", sess.User.Name).Msg("session restored")
	s.Refresh(ctx)
	return true
}

// Refresh reloads both collections for the current session. A failure is
// recorded in the status line and the previous snapshot stays visible.
func (s *State) Refresh(ctx context.Context) error {
	token := s.sessions.Token()
	if token == "" {
		return nil
	}

	s.mu.Lock()
	s.status.Err = ""
	epoch := s.epoch
	s.mu.Unlock()

	err := s.entities.Refresh(ctx, token)
	if err != nil {
		s.mu.Lock()
		if s.epoch == epoch {
			s.status.Err = errorMessage(err)
		}
		s.mu.Unlock()
	}
	return err
}

// reset returns everything tied to a signed-in user to its defaults. It
// runs as the session store's OnClear listener. A pending command keeps
// its Pending flag until it returns.
func (s *State) reset() {
	s.entities.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.tab = TabEvents
	s.studentEdit = StudentEditor{}
	s.eventEdit = EventEditor{}
	s.selection = make(map[client.ID]client.ID)
	s.status = Status{Pending: s.status.Pending}
}
