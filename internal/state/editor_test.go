package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatInputDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"2026-03-01T10:00:00.000Z", "2026-03-01T10:00"},
		{"2026-03-01T10:00:59Z", "2026-03-01T10:00"},
		{"2026-03-01T12:30:00+02:00", "2026-03-01T10:30"},
		{"2026-03-01T10:00", "2026-03-01T10:00"},
		{"next week", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatInputDate(tt.in), tt.in)
	}
}

func TestParseInputDate(t *testing.T) {
	got, err := ParseInputDate("2026-03-01T10:00")
	require.NoError(t, err)
	require.Equal(t, "2026-03-01T10:00:00Z", got)

	got, err = ParseInputDate(" 2026-03-01T12:00:00+02:00 ")
	require.NoError(t, err)
	require.Equal(t, "2026-03-01T10:00:00Z", got)

	for _, bad := range []string{"", "   ", "01/03/2026"} {
		_, err := ParseInputDate(bad)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, bad)
	}
}

func TestDateRoundTripDropsSeconds(t *testing.T) {
	got, err := ParseInputDate(FormatInputDate("2026-03-01T10:00:42.123Z"))
	require.NoError(t, err)
	require.Equal(t, "2026-03-01T10:00:00Z", got)
}

func TestStudentFormValidation(t *testing.T) {
	require.Error(t, StudentForm{FirstName: "A", LastName: " "}.validate())
	require.NoError(t, StudentForm{FirstName: "A", LastName: "B", Email: "c@d.com"}.validate())
}
