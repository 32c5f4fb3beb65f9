// Package ui provides consistent styling and terminal views for the
// inputhook CLI
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Color palette - consistent across the application
var (
	ColorPrimary   = lipgloss.Color("39")  // Bright blue
	ColorSecondary = lipgloss.Color("205") // Pink/magenta
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorInfo      = lipgloss.Color("86")  // Cyan

	ColorText      = lipgloss.Color("252")
	ColorSubtle    = lipgloss.Color("241")
	ColorMuted     = lipgloss.Color("238")
	ColorHighlight = lipgloss.Color("255")
)

var (
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorMuted).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(1, 2)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	ControlKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	ControlDescStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	// Active modifier or button in the key displayer
	ActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight).
			Background(ColorPrimary).
			Padding(0, 1)

	InactiveStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)

// Per event family colors used by FormatEvent.
var (
	keyEventStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	buttonEventStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	motionEventStyle = lipgloss.NewStyle().Foreground(ColorSubtle)
	wheelEventStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	hookEventStyle   = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
)

var (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconPrimary = "★"
)

func FormatControl(key, desc string) string {
	return ControlKeyStyle.Render(key) + " - " + ControlDescStyle.Render(desc)
}

// FormatResult renders a status line prefixed with a success or error icon.
func FormatResult(ok bool, message string) string {
	if ok {
		return SuccessStyle.Render(IconSuccess) + " " + message
	}
	return ErrorStyle.Render(IconError) + " " + message
}

// CreateSeparator creates a horizontal line separator
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 50
	}
	if char == "" {
		char = "─"
	}
	return lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Render(strings.Repeat(char, width))
}

// Table renders rows under headers with the app's table look. The first
// column is highlighted.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return lipgloss.NewStyle().
					Foreground(ColorPrimary).
					Bold(true).
					Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().
					Foreground(ColorInfo).
					Bold(true).
					Padding(0, 1)
			default:
				return lipgloss.NewStyle().
					Foreground(ColorText).
					Padding(0, 1)
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}
