package live

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color(catppuccin.Mocha.Mauve().Hex)
	goodColor   = lipgloss.Color(catppuccin.Mocha.Green().Hex)
	warnColor   = lipgloss.Color(catppuccin.Mocha.Peach().Hex)
	errColor    = lipgloss.Color(catppuccin.Mocha.Red().Hex)
	textColor   = lipgloss.Color(catppuccin.Mocha.Text().Hex)
	mutedColor  = lipgloss.Color(catppuccin.Mocha.Overlay1().Hex)
	borderColor = lipgloss.Color(catppuccin.Mocha.Surface2().Hex)
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errColor).Bold(true)
	typingStyle = lipgloss.NewStyle().Foreground(goodColor).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(warnColor)
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(borderColor)
	cardTitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	cardValueStyle = lipgloss.NewStyle().Foreground(textColor).Bold(true)
	sparkStyle     = lipgloss.NewStyle().Foreground(accentColor)
)
