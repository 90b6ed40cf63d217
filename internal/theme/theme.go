// Package theme provides the Lip Gloss color palette and reusable styles
// for the campus events TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Event status colors.
var (
	ColorScheduled = lipgloss.Color("#22c55e")
	ColorCanceled  = lipgloss.Color("#dc2626")
	ColorDefault   = lipgloss.Color("#9ca3af")
)

// Role colors.
var (
	ColorAdmin = lipgloss.Color("#a855f7")
	ColorUser  = lipgloss.Color("#3b82f6")
)

// Debug log kind colors.
var (
	ColorAPI  = lipgloss.Color("#2563eb")
	ColorNav  = lipgloss.Color("#7c3aed")
	ColorAuth = lipgloss.Color("#06b6d4")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorFocus   = lipgloss.Color("#f59e0b")
)

// StatusColor returns the color for an event status.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "SCHEDULED":
		return ColorScheduled
	case "CANCELED":
		return ColorCanceled
	default:
		return ColorDefault
	}
}

// StatusBadge returns a colored badge for an event status.
func StatusBadge(status string) string {
	if status == "" {
		status = "UNKNOWN"
	}
	return lipgloss.NewStyle().Foreground(StatusColor(status)).Render("[" + status + "]")
}

// RoleBadge returns a colored badge for a user role.
func RoleBadge(role string) string {
	switch role {
	case "ADMIN":
		return lipgloss.NewStyle().Foreground(ColorAdmin).Bold(true).Render("[admin]")
	case "USER":
		return lipgloss.NewStyle().Foreground(ColorUser).Render("[user]")
	default:
		return lipgloss.NewStyle().Foreground(ColorDefault).Render("[?]")
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleFocusedBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(ColorFocus)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleNotice = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	StyleTabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBg).
			Background(ColorFocus).
			Padding(0, 1)

	StyleTab = lipgloss.NewStyle().
			Foreground(ColorDimmed).
			Padding(0, 1)
)

// Cursor returns the list prefix for a row.
func Cursor(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}
