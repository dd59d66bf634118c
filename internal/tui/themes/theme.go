package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the explorer.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Flagged     lipgloss.Style
	Help        lipgloss.Style
	Header      lipgloss.Style
	Selected    lipgloss.Style
	BorderedBox lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Foreground  lipgloss.Color
	Suspicious  lipgloss.Color
	NormalNode  lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	// Colors
	Primary:    lipgloss.Color("#5DADE2"),
	Foreground: lipgloss.Color("#fafafa"),
	Border:     lipgloss.Color("#404040"),
	Muted:      lipgloss.Color("#737373"),
	Suspicious: lipgloss.Color("#ef4444"),
	NormalNode: lipgloss.Color("#87ceeb"),

	// Text styles
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Flagged: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ef4444")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),

	// Table styles
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5DADE2")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		BorderBottom(true),
	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1a1a1a")).
		Background(lipgloss.Color("#5DADE2")),

	// Containers
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
}
