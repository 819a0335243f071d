// Package tui renders the interactive balancer and the shared report
// components used by the CLI.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader    = lipgloss.Color("39")
	ColorBorder    = lipgloss.Color("240")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("255")
	ColorMuted     = lipgloss.Color("242")
	ColorOK        = lipgloss.Color("42")
	ColorWarning   = lipgloss.Color("214")
	ColorCritical  = lipgloss.Color("196")
	ColorHighlight = lipgloss.Color("212")
	ColorSpinner   = lipgloss.Color("69")
)

// Icons.
const (
	IconArrowUp    = "↑"
	IconArrowDown  = "↓"
	IconArrowRight = "→"
	IconCheck      = "✓"
	IconPending    = "…"
	IconCursor     = "▸"
)

// Shared styles.
//
//nolint:gochecknoglobals // lipgloss styles are immutable values.
var (
	HeaderStyle  = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
	OKStyle      = lipgloss.NewStyle().Foreground(ColorOK).Bold(true)
	BoxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)
