package state

import (
	"strings"
	"time"

	"github.com/campus-events/tui/internal/client"
)

// InputDateLayout is the minute-precision layout used by the event form.
const InputDateLayout = "2006-01-02T15:04"

// StudentForm holds the student form fields.
type StudentForm struct {
	FirstName string
	LastName  string
	Email     string
}

func (f StudentForm) input() client.StudentInput {
	return client.StudentInput{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
	}
}

func (f StudentForm) validate() error {
	if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" || strings.TrimSpace(f.Email) == "" {
		return invalid("First name, last name and email are required.")
	}
	return nil
}

// EventForm holds the event form fields. Date uses InputDateLayout.
type EventForm struct {
	Title       string
	Description string
	Date        string
	Location    string
}

func (f EventForm) input() (client.EventInput, error) {
	if strings.TrimSpace(f.Title) == "" {
		return client.EventInput{}, invalid("Event title is required.")
	}
	date, err := ParseInputDate(f.Date)
	if err != nil {
		return client.EventInput{}, err
	}
	return client.EventInput{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Date:        date,
		Location:    strings.TrimSpace(f.Location),
	}, nil
}

// StudentEditor is the edit-mode state of the student form. An empty
// Target means Idle.
type StudentEditor struct {
	Target client.ID
	Form   StudentForm
}

// Editing reports whether a student is staged for modification.
func (e StudentEditor) Editing() bool { return e.Target != "" }

// EventEditor is the edit-mode state of the event form. An empty Target
// means Idle.
type EventEditor struct {
	Target client.ID
	Form   EventForm
}

// Editing reports whether an event is staged for modification.
func (e EventEditor) Editing() bool { return e.Target != "" }

// FormatInputDate renders a server date for the form, in UTC at minute
// precision. Unparseable values render empty.
func FormatInputDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format(InputDateLayout)
	}
	if t, err := time.Parse(InputDateLayout, value); err == nil {
		return t.Format(InputDateLayout)
	}
	return ""
}

// ParseInputDate converts a form date back to RFC 3339 (UTC).
func ParseInputDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("Event date is required.")
	}
	if t, err := time.ParseInLocation(InputDateLayout, value, time.UTC); err == nil {
		return t.Format(time.RFC3339), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	return "", invalid("Event date must look like " + InputDateLayout + ".")
}

// EditStudent stages a student for modification and pre-fills the form
// from the current snapshot.
func (s *State) EditStudent(id client.ID) error {
	st, ok := s.entities.Student(id)
	if !ok {
		return ErrUnknownRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.studentEdit = StudentEditor{
		Target: id,
		Form: StudentForm{
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Email:     st.Email,
		},
	}
	s.tab = TabStudents
	return nil
}

// CancelStudentEdit returns the student form to Idle with empty fields.
func (s *State) CancelStudentEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studentEdit = StudentEditor{}
}

// EditEvent stages an event for modification and pre-fills the form from
// the current snapshot.
func (s *State) EditEvent(id client.ID) error {
	ev, ok := s.entities.Event(id)
	if !ok {
		return ErrUnknownRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventEdit = EventEditor{
		Target: id,
		Form: EventForm{
			Title:       ev.Title,
			Description: ev.Description,
			Date:        FormatInputDate(ev.Date),
			Location:    ev.Location,
		},
	}
	s.tab = TabEvents
	return nil
}

// CancelEventEdit returns the event form to Idle with empty fields.
func (s *State) CancelEventEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventEdit = EventEditor{}
}

// UpdateStudentForm applies fn to the student form fields.
func (s *State) UpdateStudentForm(fn func(*StudentForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.studentEdit.Form)
}

// UpdateEventForm applies fn to the event form fields.
func (s *State) UpdateEventForm(fn func(*EventForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.eventEdit.Form)
}
