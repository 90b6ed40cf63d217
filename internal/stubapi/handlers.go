package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Event statuses.
const (
	StatusScheduled = "SCHEDULED"
	StatusCanceled  = "CANCELED"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := s.sortedStudents()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type studentBody struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

func (b studentBody) problems(partial bool) []string {
	var out []string
	check := func(v *string, name string) {
		if v == nil {
			if !partial {
				out = append(out, name+" should not be empty")
			}
			return
		}
		if strings.TrimSpace(*v) == "" {
			out = append(out, name+" should not be empty")
		}
	}
	check(b.FirstName, "firstName")
	check(b.LastName, "lastName")
	check(b.Email, "email")
	if b.Email != nil && strings.TrimSpace(*b.Email) != "" && !strings.Contains(*b.Email, "@") {
		out = append(out, "email must be an email")
	}
	return out
}

func (b studentBody) apply(st *Student) {
	if b.FirstName != nil {
		st.FirstName = strings.TrimSpace(*b.FirstName)
	}
	if b.LastName != nil {
		st.LastName = strings.TrimSpace(*b.LastName)
	}
	if b.Email != nil {
		st.Email = strings.ToLower(strings.TrimSpace(*b.Email))
	}
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var in studentBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if p := in.problems(false); len(p) > 0 {
		writeError(w, http.StatusBadRequest, p...)
		return
	}

	s.mu.Lock()
	s.nextID++
	st := &Student{ID: s.nextID}
	in.apply(st)
	s.students[st.ID] = st
	out := *st
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return
	}
	var in studentBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if p := in.problems(true); len(p) > 0 {
		writeError(w, http.StatusBadRequest, p...)
		return
	}

	s.mu.Lock()
	st, found := s.students[id]
	if found {
		in.apply(st)
	}
	var out Student
	if found {
		out = *st
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Student %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return
	}

	s.mu.Lock()
	_, found := s.students[id]
	delete(s.students, id)
	for _, subs := range s.subscribers {
		delete(subs, id)
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Student %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := s.sortedEvents()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type eventBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
}

func (b eventBody) problems(partial bool) []string {
	var out []string
	if b.Title == nil && !partial || b.Title != nil && strings.TrimSpace(*b.Title) == "" {
		out = append(out, "title should not be empty")
	}
	if b.Date == nil && !partial {
		out = append(out, "date must be a valid ISO 8601 date string")
	} else if b.Date != nil {
		if _, err := time.Parse(time.RFC3339, *b.Date); err != nil {
			out = append(out, "date must be a valid ISO 8601 date string")
		}
	}
	return out
}

func (b eventBody) apply(ev *Event) {
	if b.Title != nil {
		ev.Title = strings.TrimSpace(*b.Title)
	}
	if b.Description != nil {
		ev.Description = *b.Description
	}
	if b.Date != nil {
		t, _ := time.Parse(time.RFC3339, *b.Date)
		ev.Date = t.UTC().Format("2006-01-02T15:04:05.000Z")
	}
	if b.Location != nil {
		ev.Location = strings.TrimSpace(*b.Location)
	}
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in eventBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if p := in.problems(false); len(p) > 0 {
		writeError(w, http.StatusBadRequest, p...)
		return
	}

	s.mu.Lock()
	s.nextID++
	ev := &Event{ID: s.nextID, Status: StatusScheduled}
	in.apply(ev)
	s.events[ev.ID] = ev
	out := *ev
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return
	}
	var in eventBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if p := in.problems(true); len(p) > 0 {
		writeError(w, http.StatusBadRequest, p...)
		return
	}

	s.mu.Lock()
	ev, found := s.events[id]
	var out Event
	if found {
		in.apply(ev)
		out = *ev
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Event %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return
	}

	s.mu.Lock()
	ev, found := s.events[id]
	var (
		out     Event
		already bool
	)
	if found {
		already = ev.Status == StatusCanceled
		ev.Status = StatusCanceled
		out = *ev
	}
	s.mu.Unlock()

	switch {
	case !found:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Event %d not found", id))
	case already:
		writeError(w, http.StatusConflict, "Event already canceled")
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	eventID, ok1 := pathID(r, "id")
	studentID, ok2 := pathID(r, "studentID")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev, found := s.events[eventID]
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Event %d not found", eventID))
		return
	}
	if _, found := s.students[studentID]; !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Student %d not found", studentID))
		return
	}
	if ev.Status == StatusCanceled {
		writeError(w, http.StatusConflict, "Event is canceled")
		return
	}
	if s.subscribers[eventID][studentID] {
		writeError(w, http.StatusConflict, "Student already subscribed")
		return
	}
	if s.subscribers[eventID] == nil {
		s.subscribers[eventID] = make(map[int64]bool)
	}
	s.subscribers[eventID][studentID] = true
	writeJSON(w, http.StatusCreated, map[string]int64{"eventId": eventID, "studentId": studentID})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	eventID, ok1 := pathID(r, "id")
	studentID, ok2 := pathID(r, "studentID")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Validation failed (numeric string is expected)")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.subscribers[eventID][studentID] {
		writeError(w, http.StatusNotFound, "Subscription not found")
		return
	}
	delete(s.subscribers[eventID], studentID)
	w.WriteHeader(http.StatusNoContent)
}
