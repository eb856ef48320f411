// Package ui renders gitgo output for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorGreenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	ColorRedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	ColorYellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	ColorBlueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true)
	ColorCyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))
	ColorMagentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF00FF")).Italic(true)
	ColorDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Object kinds
	CommitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	TreeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true)
	BlobStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))

	// Delta directions
	AddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	RemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5FFF")).
			PaddingTop(1).
			PaddingBottom(1).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Underline(true)

	CommitBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5FFF")).
			Padding(1, 2).
			MarginBottom(1)
)

// Icons
const (
	IconCheck     = "✓"
	IconAdded     = "+"
	IconRemoved   = "-"
	IconBranch    = "⎇"
	IconCommit    = "⊚"
	IconTree      = "▸"
	IconBlob      = "•"
	IconAuthor    = "👤"
	IconDate      = "📅"
	IconSeparator = "│"
	IconRoot      = "◎"
)

func Green(s string) string {
	return ColorGreenStyle.Render(s)
}

func Red(s string) string {
	return ColorRedStyle.Render(s)
}

func Yellow(s string) string {
	return ColorYellowStyle.Render(s)
}

func Blue(s string) string {
	return ColorBlueStyle.Render(s)
}

func Cyan(s string) string {
	return ColorCyanStyle.Render(s)
}

func Magenta(s string) string {
	return ColorMagentaStyle.Render(s)
}

func Dim(s string) string {
	return ColorDimStyle.Render(s)
}

func Header(text string) string {
	return HeaderStyle.Render(text)
}

func Section(text string) string {
	return SectionStyle.Render(text)
}

func CommitBox(text string) string {
	return CommitBoxStyle.Render(text)
}
