// Package entities holds the authoritative snapshot of the students and
// events collections. The Synchronizer is the only writer of both.
package entities

import (
	"context"
	"slices"
	"sync"

	"github.com/campus-events/tui/internal/client"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Source fetches the server-side collections.
type Source interface {
	ListStudents(ctx context.Context, token string) ([]client.Student, error)
	ListEvents(ctx context.Context, token string) ([]client.Event, error)
}

// Synchronizer replaces both collections together after each fetch.
type Synchronizer struct {
	src Source
	log zerolog.Logger

	mu       sync.RWMutex
	students []client.Student
	events   []client.Event
	inflight int
	started  uint64 // sequence handed to each refresh as it begins
	applied  uint64 // sequence of the refresh whose result is in place
	epoch    uint64 // bumped by Reset; a refresh started before it is dropped
}

// NewSynchronizer creates an empty synchronizer reading from src.
func NewSynchronizer(src Source, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{src: src, log: log}
}

// Refresh fetches students and events concurrently and commits them only
// when both succeed. On failure the previous snapshot stays in place.
// Without a token it does nothing.
func (s *Synchronizer) Refresh(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	epoch := s.epoch
	s.started++
	seq := s.started
	s.inflight++
	s.mu.Unlock()
	defer s.track(-1)

	var (
		students []client.Student
		events   []client.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = s.src.ListStudents(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.src.ListEvents(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Msg("refresh failed, keeping previous snapshot")
		return err
	}

	if students == nil {
		students = []client.Student{}
	}
	if events == nil {
		events = []client.Event{}
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug().Msg("snapshot reset during refresh, dropping result")
		return nil
	}
	if seq < s.applied {
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", seq).Uint64("applied", s.applied).Msg("newer snapshot already in place, dropping result")
		return nil
	}
	s.students = students
	s.events = events
	s.applied = seq
	s.mu.Unlock()

	s.log.Debug().Int("students", len(students)).Int("events", len(events)).Msg("snapshot replaced")
	return nil
}

// Reset empties both collections.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = nil
	s.events = nil
	s.epoch++
}

func (s *Synchronizer) track(delta int) {
	s.mu.Lock()
	s.inflight += delta
	s.mu.Unlock()
}

// Loading reports whether a refresh is in flight.
func (s *Synchronizer) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Students returns a copy of the students snapshot.
func (s *Synchronizer) Students() []client.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.students)
}

// Events returns a copy of the events snapshot.
func (s *Synchronizer) Events() []client.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Student looks up a student in the snapshot.
func (s *Synchronizer) Student(id client.ID) (client.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.ID == id {
			return st, true
		}
	}
	return client.Student{}, false
}

// Event looks up an event in the snapshot.
func (s *Synchronizer) Event(id client.ID) (client.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return client.Event{}, false
}
