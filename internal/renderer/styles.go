package renderer

import "github.com/charmbracelet/lipgloss"

// Semantic palette shared by all pretty output. Tokyo Night.
var (
	colorPrimary    = lipgloss.Color("#7aa2f7")
	colorForeground = lipgloss.Color("#c0caf5")
	colorMuted      = lipgloss.Color("#565f89")
	colorSuccess    = lipgloss.Color("#9ece6a")
	colorWarning    = lipgloss.Color("#e0af68")
	colorError      = lipgloss.Color("#f7768e")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
	summaryStyle = lipgloss.NewStyle().
			Foreground(colorForeground)
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	pendingMarkStyle = lipgloss.NewStyle().
				Foreground(colorWarning)
	completedMarkStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Strikethrough(false)
	completedTitleStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Strikethrough(true)
	tagStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)
	menuIndexStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
)
