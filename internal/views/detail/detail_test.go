package detail

import (
	"testing"

	"github.com/campus-events/tui/internal/client"
	"github.com/stretchr/testify/require"
)

func TestViewEmpty(t *testing.T) {
	require.Empty(t, Model{}.View())
}

func TestView(t *testing.T) {
	ev := client.Event{
		ID:          "10",
		Title:       "Welcome talk",
		Description: "Bring a **laptop**.",
		Location:    "Room 101",
		Status:      client.EventScheduled,
	}
	st := &client.Student{ID: "2", FirstName: "Bia", LastName: "Lima", Email: "bia@b.com"}

	v := New(ev, st, false).View()
	require.Contains(t, v, "Welcome talk")
	require.Contains(t, v, "Room 101")
	require.Contains(t, v, "Bia Lima <bia@b.com>")
	require.Contains(t, v, "laptop")
	require.NotContains(t, v, "**laptop**")
	require.NotContains(t, v, "[x] cancel event")

	require.Contains(t, New(ev, nil, true).View(), "[x] cancel event")
}

func TestViewNoDescription(t *testing.T) {
	v := New(client.Event{ID: "1", Title: "Quiet"}, nil, false).View()
	require.Contains(t, v, "No description.")
	require.Contains(t, v, "Student:")
}
