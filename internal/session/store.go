// Package session owns the authenticated user's credential and its
// durable copy. It is the only reader and writer of the stored record.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campus-events/tui/internal/client"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// StorageKey names the single record holding the persisted session.
const StorageKey = "auth"

// ErrInvalidSession is returned when a record lacks a user object or a token.
var ErrInvalidSession = errors.New("invalid session")

// Session is the authenticated identity plus its bearer credential.
type Session struct {
	User  client.User `json:"user"`
	Token string      `json:"token"`
}

// ExpiresAt reads the exp claim when the token is a JWT. The token is not
// verified; the server remains the only judge of validity.
func (s Session) ExpiresAt() (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Parse decodes a stored record. Both a JSON object under "user" and a
// non-empty string under "token" are required.
func Parse(data []byte) (Session, error) {
	var raw struct {
		User  json.RawMessage `json:"user"`
		Token json.RawMessage `json:"token"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if u := bytes.TrimSpace(raw.User); len(u) == 0 || u[0] != '{' {
		return Session{}, fmt.Errorf("%w: missing user", ErrInvalidSession)
	}

	var token string
	if err := json.Unmarshal(raw.Token, &token); err != nil || token == "" {
		return Session{}, fmt.Errorf("%w: missing token", ErrInvalidSession)
	}

	var user client.User
	if err := json.Unmarshal(raw.User, &user); err != nil {
		return Session{}, fmt.Errorf("%w: user: %v", ErrInvalidSession, err)
	}
	return Session{User: user, Token: token}, nil
}

// Store holds the current session in memory and mirrors it to a Backend.
type Store struct {
	backend Backend
	log     zerolog.Logger

	mu      sync.Mutex
	current *Session
	onClear []func()
}

// NewStore creates a store persisting through backend.
func NewStore(backend Backend, log zerolog.Logger) *Store {
	return &Store{backend: backend, log: log}
}

// OnClear registers fn to run after every Clear. Listeners reset the state
// that only makes sense for a signed-in user.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Restore loads the persisted session. An absent, unparseable or incomplete
// record yields false; a malformed record is also removed.
func (s *Store) Restore() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Read(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Msg("session record unreadable")
		}
		return Session{}, false
	}

	sess, err := Parse(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding malformed session record")
		if rmErr := s.backend.Remove(StorageKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Msg("removing malformed session record")
		}
		return Session{}, false
	}

	s.current = &sess
	return sess, true
}

// Establish makes sess the current session and persists it. The in-memory
// session is set even when persisting fails; the error reports the
// persistence failure.
func (s *Store) Establish(sess Session) error {
	if sess.Token == "" {
		return fmt.Errorf("%w: missing token", ErrInvalidSession)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sess
	if err := s.backend.Write(StorageKey, data); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

// Clear forgets the session in memory and in storage, then notifies every
// OnClear listener. Calling it again is harmless.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.current = nil
	err := s.backend.Remove(StorageKey)
	listeners := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	if err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Current returns the in-memory session.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}
