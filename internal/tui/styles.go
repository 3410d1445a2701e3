package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/econet/internal/version"
)

// Application branding constants
const (
	AppName   = "ECONET WATCH"
	GitHubURL = "github.com/muurk/econet"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#E8702A") // Flame orange
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	ChangedColor   = lipgloss.Color("#F4D03F") // Yellow
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor       = lipgloss.Color("#FFFFFF") // White
	SubtleColor     = lipgloss.Color("#626262") // Gray
	BackgroundColor = lipgloss.Color("#1A1A1A") // Dark gray
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Background(BackgroundColor).
			Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	ParamNameStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ParamValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// ChangedValueStyle highlights values that changed on the last poll
	ChangedValueStyle = lipgloss.NewStyle().
				Foreground(ChangedColor).
				Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	OKTextStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)
)

// BuildHeaderContent creates the header line with app name, version and controller
func BuildHeaderContent(controller string, width int) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + AppVersion())

	right := SubtitleStyle.Render(controller)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}
