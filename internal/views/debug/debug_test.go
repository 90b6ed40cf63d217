package debug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddEntry(t *testing.T) {
	m := New()
	m.Add(KindAPI, "refresh")
	require.Len(t, m.Entries, 1)
	require.Equal(t, KindAPI, m.Entries[0].Kind)

	m.Addf(KindErr, "delete student %s: %s", "9", "not found")
	require.Equal(t, "delete student 9: not found", m.Entries[1].Message)
}

func TestMaxEntries(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Add(KindAPI, "msg")
	}
	require.Len(t, m.Entries, maxEntries)
}

func TestScrollUpDown(t *testing.T) {
	m := New()
	for i := 0; i < 20; i++ {
		m.Add(KindAPI, "msg")
	}
	require.Zero(t, m.Offset)

	m.ScrollUp(5)
	require.Equal(t, 5, m.Offset)
	m.ScrollDown(3)
	require.Equal(t, 2, m.Offset)
	m.ScrollDown(10)
	require.Zero(t, m.Offset)
}

func TestScrollUpCapped(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.Add(KindAPI, "msg")
	}
	m.ScrollUp(100)
	require.Equal(t, 4, m.Offset)

	empty := New()
	empty.ScrollUp(3)
	require.Zero(t, empty.Offset)
}

func TestView(t *testing.T) {
	require.Contains(t, New().View(80, 20), "Nothing recorded")

	m := New()
	m.Add(KindAuth, "signed in as Ana")
	m.Add(KindErr, "Invalid credentials")
	v := m.View(80, 20)
	require.Contains(t, v, "signed in as Ana")
	require.Contains(t, v, "Invalid credentials")
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.Add(KindNav, "msg")
	}
	m.ScrollUp(5)
	m.Add(KindNav, "new")
	require.Zero(t, m.Offset)
}
