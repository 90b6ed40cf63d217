package state

import (
	"context"
	"errors"
	"strings"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/session"
)

// AuthMode selects the form on the signed-out screen.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// Notices set by the session actions.
const (
	NoticeRegistered = "Account created. You can now sign in."
)

// LoginForm holds the sign-in fields.
type LoginForm struct {
	Email    string
	Password string
}

// RegisterForm holds the sign-up fields.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
}

// SetAuthMode switches between sign-in and sign-up and clears messages.
func (s *State) SetAuthMode(mode AuthMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.status.Err = ""
	s.status.Notice = ""
}

// UpdateLogin applies fn to the sign-in fields.
func (s *State) UpdateLogin(fn func(*LoginForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.login)
}

// UpdateRegister applies fn to the sign-up fields.
func (s *State) UpdateRegister(fn func(*RegisterForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.register)
}

// begin claims the single pending slot and clears messages.
func (s *State) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Pending {
		return ErrBusy
	}
	s.status = Status{Pending: true}
	return nil
}

// end releases the pending slot, recording err if any.
func (s *State) end(err error, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Pending = false
	if err != nil {
		s.status.Err = errorMessage(err)
		return
	}
	s.status.Notice = notice
}

// Register creates an account from the sign-up form. On success the
// screen switches to sign-in with the email carried over.
func (s *State) Register(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}

	s.mu.Lock()
	form := s.register
	s.mu.Unlock()

	err := s.api.Register(ctx, client.RegisterRequest{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
	if err != nil {
		s.log.Info().Err(err).Msg("register rejected")
		s.end(err, "")
		return err
	}

	s.mu.Lock()
	s.mode = ModeLogin
	s.login.Email = form.Email
	s.login.Password = ""
	s.register.Password = ""
	s.mu.Unlock()

	s.end(nil, NoticeRegistered)
	return nil
}

// Login signs in with the sign-in form, persists the session and loads
// the collections.
func (s *State) Login(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}

	s.mu.Lock()
	form := s.login
	s.mu.Unlock()

	resp, err := s.api.Login(ctx, client.LoginRequest{
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
	if err != nil {
		s.log.Info().Err(err).Msg("login rejected")
		s.end(err, "")
		return err
	}

	sess := session.Session{User: resp.User, Token: resp.Token}
	if err := s.sessions.Establish(sess); err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			s.log.Warn().Err(err).Msg("login response without token")
			err = &client.APIError{StatusCode: 200, Message: client.GenericErrorMessage, Err: err}
			s.end(err, "")
			return err
		}
		// The session is usable for this run even if it cannot be persisted.
		s.log.Warn().Err(err).Msg("session not persisted")
	}
	s.log.Info().Str("user", sess.User.Name).Str("role", string(sess.User.Role)).Msg("signed in")

	s.mu.Lock()
	s.login.Password = ""
	s.mu.Unlock()
	s.end(nil, "")

	return s.Refresh(ctx)
}

// Logout destroys the session; the store's OnClear listener resets the
// rest of the state.
func (s *State) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("session record not removed")
		return err
	}
	s.log.Info().Msg("signed out")
	return nil
}
