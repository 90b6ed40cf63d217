package state

import "github.com/campus-events/tui/internal/client"

// SelectStudent stages studentID as the subscription target for eventID.
// An empty studentID clears the entry. Other events are not affected.
func (s *State) SelectStudent(eventID, studentID client.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if studentID == "" {
		delete(s.selection, eventID)
		return
	}
	s.selection[eventID] = studentID
}

// SelectedStudent returns the staged student for eventID.
func (s *State) SelectedStudent(eventID client.ID) (client.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.selection[eventID]
	return id, ok
}

// CycleSelection moves the staged student for eventID by delta through
// the student snapshot. The cycle includes a "none selected" position.
func (s *State) CycleSelection(eventID client.ID, delta int) client.ID {
	students := s.entities.Students()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Position 0 is "none", positions 1..n map to students[0..n-1].
	n := len(students) + 1
	pos := 0
	if cur, ok := s.selection[eventID]; ok {
		for i, st := range students {
			if st.ID == cur {
				pos = i + 1
				break
			}
		}
	}
	pos = ((pos+delta)%n + n) % n

	if pos == 0 {
		delete(s.selection, eventID)
		return ""
	}
	id := students[pos-1].ID
	s.selection[eventID] = id
	return id
}

// dropSelectionsOf forgets every staged selection pointing at studentID.
// Callers hold s.mu.
func (s *State) dropSelectionsOf(studentID client.ID) {
	for eventID, id := range s.selection {
		if id == studentID {
			delete(s.selection, eventID)
		}
	}
}
