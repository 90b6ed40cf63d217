// Package stubapi is an in-memory implementation of the campus events HTTP
// API. It backs the client's tests and the events-stub command.
package stubapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const tokenTTL = 24 * time.Hour

// Recorded is one request as the server received it.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

type failure struct {
	status int
	body   string
}

// Server holds users, students, events and subscriptions in memory.
type Server struct {
	secret []byte
	log    zerolog.Logger

	mu          sync.Mutex
	users       map[string]*user // by lowercase email
	nextID      int64
	students    map[int64]*Student
	events      map[int64]*Event
	subscribers map[int64]map[int64]bool // event id -> student ids
	requests    []Recorded
	failures    map[string]failure
}

type user struct {
	ID       int64
	Name     string
	Email    string
	Role     string
	Password []byte // bcrypt hash
}

// Student is the stored roster entry.
type Student struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Event is the stored event.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Status      string `json:"status"`
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing secret. A random one is used otherwise.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		secret:      []byte(uuid.NewString()),
		log:         zerolog.Nop(),
		users:       make(map[string]*user),
		students:    make(map[int64]*Student),
		events:      make(map[int64]*Event),
		subscribers: make(map[int64]map[int64]bool),
		failures:    make(map[string]failure),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router, with every route relative to the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/students", s.handleListStudents)
		r.Get("/events", s.handleListEvents)
		r.Post("/events/{id}/subscribe/{studentID}", s.handleSubscribe)
		r.Delete("/events/{id}/unsubscribe/{studentID}", s.handleUnsubscribe)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/students", s.handleCreateStudent)
			r.Patch("/students/{id}", s.handleUpdateStudent)
			r.Delete("/students/{id}", s.handleDeleteStudent)
			r.Post("/events", s.handleCreateEvent)
			r.Patch("/events/{id}", s.handleUpdateEvent)
			r.Patch("/events/{id}/cancel", s.handleCancelEvent)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	return r
}

// record stores every request and serves injected failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		f, fail := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("request_id", r.Header.Get("X-Request-ID")).Msg("request")

		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Fail makes method+path answer status with body until Recover is called.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Recover removes every injected failure.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Students returns the stored students ordered by id.
func (s *Server) Students() []Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedStudents()
}

// Events returns the stored events ordered by id.
func (s *Server) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedEvents()
}

// Subscribed reports whether studentID is subscribed to eventID.
func (s *Server) Subscribed(eventID, studentID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribers[eventID][studentID]
}

// SeedStudent stores a student directly and returns it.
func (s *Server) SeedStudent(firstName, lastName, email string) Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	st := &Student{ID: s.nextID, FirstName: firstName, LastName: lastName, Email: strings.ToLower(email)}
	s.students[st.ID] = st
	return *st
}

// SeedEvent stores an event directly and returns it.
func (s *Server) SeedEvent(title, date, location string, status string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if status == "" {
		status = StatusScheduled
	}
	ev := &Event{ID: s.nextID, Title: title, Date: date, Location: location, Status: status}
	s.events[ev.ID] = ev
	return *ev
}

func (s *Server) sortedStudents() []Student {
	out := make([]Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) sortedEvents() []Event {
	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, *ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the API's error payload. A single message is a
// string, several are a list.
func writeError(w http.ResponseWriter, status int, messages ...string) {
	body := map[string]any{"statusCode": status}
	if len(messages) == 1 {
		body["message"] = messages[0]
	} else {
		body["message"] = messages
	}
	writeJSON(w, status, body)
}
