package state

import (
	"context"

	"github.com/campus-events/tui/internal/client"
)

// Notices set by successful mutations.
const (
	NoticeStudentCreated = "Student created."
	NoticeStudentUpdated = "Student updated."
	NoticeStudentDeleted = "Student deleted."
	NoticeEventCreated   = "Event created."
	NoticeEventUpdated   = "Event updated."
	NoticeEventCanceled  = "Event canceled."
	NoticeSubscribed     = "Subscription recorded."
	NoticeUnsubscribed   = "Unsubscription recorded."
)

// mutation describes one write against the API.
type mutation struct {
	name string
	// prepare validates and captures inputs; it runs with s.mu held.
	prepare func() error
	call    func(ctx context.Context, token string) error
	// refresh reloads the collections after a successful call.
	refresh bool
	notice  func() string
	// done runs with s.mu held after a successful call.
	done func()
}

// mutate runs m as the single pending command. Collections change only
// through the synchronizer's refresh, never here.
func (s *State) mutate(ctx context.Context, m mutation) error {
	token := s.sessions.Token()

	s.mu.Lock()
	if s.status.Pending {
		s.mu.Unlock()
		return ErrBusy
	}
	if token == "" {
		s.status = Status{Err: MsgSignInFirst}
		s.mu.Unlock()
		return ErrSignedOut
	}
	if m.prepare != nil {
		if err := m.prepare(); err != nil {
			s.status = Status{Err: errorMessage(err)}
			s.mu.Unlock()
			s.log.Debug().Str("op", m.name).Err(err).Msg("rejected before request")
			return err
		}
	}
	notice := ""
	if m.notice != nil {
		notice = m.notice()
	}
	s.status = Status{Pending: true}
	epoch := s.epoch
	s.mu.Unlock()

	err := m.call(ctx, token)

	var refreshErr error
	if err == nil && m.refresh && s.sessions.Token() == token {
		refreshErr = s.entities.Refresh(ctx, token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Pending = false
	if s.epoch != epoch {
		// Signed out while the request was in flight.
		return err
	}
	if err != nil {
		s.log.Info().Str("op", m.name).Err(err).Msg("mutation failed")
		s.status.Err = errorMessage(err)
		return err
	}

	s.log.Info().Str("op", m.name).Msg("mutation applied")
	if m.done != nil {
		m.done()
	}
	s.status.Notice = notice
	if refreshErr != nil {
		s.status.Err = errorMessage(refreshErr)
		return refreshErr
	}
	return nil
}

// SubmitStudent creates a student, or updates the one being edited.
func (s *State) SubmitStudent(ctx context.Context) error {
	var (
		target client.ID
		in     client.StudentInput
	)
	return s.mutate(ctx, mutation{
		name: "submit student",
		prepare: func() error {
			target = s.studentEdit.Target
			if err := s.studentEdit.Form.validate(); err != nil {
				return err
			}
			in = s.studentEdit.Form.input()
			return nil
		},
		call: func(ctx context.Context, token string) error {
			if target != "" {
				return s.api.UpdateStudent(ctx, token, target, in)
			}
			return s.api.CreateStudent(ctx, token, in)
		},
		refresh: true,
		notice: func() string {
			if target != "" {
				return NoticeStudentUpdated
			}
			return NoticeStudentCreated
		},
		done: func() {
			s.studentEdit = StudentEditor{}
		},
	})
}

// DeleteStudent removes a student.
func (s *State) DeleteStudent(ctx context.Context, id client.ID) error {
	return s.mutate(ctx, mutation{
		name: "delete student",
		call: func(ctx context.Context, token string) error {
			return s.api.DeleteStudent(ctx, token, id)
		},
		refresh: true,
		notice:  func() string { return NoticeStudentDeleted },
		done: func() {
			if s.studentEdit.Target == id {
				s.studentEdit = StudentEditor{}
			}
			s.dropSelectionsOf(id)
		},
	})
}

// SubmitEvent creates an event, or updates the one being edited.
func (s *State) SubmitEvent(ctx context.Context) error {
	var (
		target client.ID
		in     client.EventInput
	)
	return s.mutate(ctx, mutation{
		name: "submit event",
		prepare: func() error {
			target = s.eventEdit.Target
			var err error
			in, err = s.eventEdit.Form.input()
			return err
		},
		call: func(ctx context.Context, token string) error {
			if target != "" {
				return s.api.UpdateEvent(ctx, token, target, in)
			}
			return s.api.CreateEvent(ctx, token, in)
		},
		refresh: true,
		notice: func() string {
			if target != "" {
				return NoticeEventUpdated
			}
			return NoticeEventCreated
		},
		done: func() {
			s.eventEdit = EventEditor{}
		},
	})
}

// CancelEvent marks an event canceled. An event the snapshot already shows
// as canceled is rejected without a request.
func (s *State) CancelEvent(ctx context.Context, id client.ID) error {
	return s.mutate(ctx, mutation{
		name: "cancel event",
		prepare: func() error {
			if ev, ok := s.entities.Event(id); ok && ev.Canceled() {
				return invalid(MsgEventAlreadyCanceled)
			}
			return nil
		},
		call: func(ctx context.Context, token string) error {
			return s.api.CancelEvent(ctx, token, id)
		},
		refresh: true,
		notice:  func() string { return NoticeEventCanceled },
		done: func() {
			if s.eventEdit.Target == id {
				s.eventEdit = EventEditor{}
			}
		},
	})
}

// Subscribe enrolls the student selected for eventID. The snapshot is not
// refreshed afterwards; events carry no subscriber list client-side.
func (s *State) Subscribe(ctx context.Context, eventID client.ID) error {
	var studentID client.ID
	return s.mutate(ctx, mutation{
		name: "subscribe",
		prepare: func() error {
			studentID = s.selection[eventID]
			if studentID == "" {
				return invalid(MsgSelectStudentSubscribe)
			}
			if ev, ok := s.entities.Event(eventID); ok && ev.Canceled() {
				return invalid(MsgEventCanceledNoSubscribe)
			}
			return nil
		},
		call: func(ctx context.Context, token string) error {
			return s.api.Subscribe(ctx, token, eventID, studentID)
		},
		notice: func() string { return NoticeSubscribed },
	})
}

// Unsubscribe withdraws the student selected for eventID. Like Subscribe
// it does not refresh the snapshot.
func (s *State) Unsubscribe(ctx context.Context, eventID client.ID) error {
	var studentID client.ID
	return s.mutate(ctx, mutation{
		name: "unsubscribe",
		prepare: func() error {
			studentID = s.selection[eventID]
			if studentID == "" {
				return invalid(MsgSelectStudentUnsubscribe)
			}
			return nil
		},
		call: func(ctx context.Context, token string) error {
			return s.api.Unsubscribe(ctx, token, eventID, studentID)
		},
		notice: func() string { return NoticeUnsubscribed },
	})
}
