package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorIndigo = lipgloss.AdaptiveColor{Dark: "#7F8CFF", Light: "#4C51BF"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the navigation bar and screen titles.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorIndigo).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// AlertStyle is the status bar while it shows a confirmation.
var AlertStyle = StatusBarStyle.
	Background(ColorGreen)

// ErrorAlertStyle is the status bar while it shows a failure.
var ErrorAlertStyle = StatusBarStyle.
	Background(ColorRed)

// PanelStyle wraps overlays and detail content.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle renders a screen title above its content.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle renders messages that were already read.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// MetaStyle renders labels such as "DE:" in message views.
var MetaStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ValueStyle renders the value next to a MetaStyle label.
var ValueStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// ErrorStyle renders inline form errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// NavLinkStyle returns the style of a navigation bar entry.
func NavLinkStyle(active bool) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Background(ColorIndigo)
	if active {
		return base.Bold(true).Underline(true).Foreground(ColorWhite)
	}
	return base.Foreground(ColorSubtle)
}

// MailRowStyle returns the style of a message row; read mail is dimmed.
func MailRowStyle(read, selected bool) lipgloss.Style {
	switch {
	case selected:
		return SelectedItemStyle
	case read:
		return ListItemStyle.Foreground(ColorGray)
	default:
		return ListItemStyle.Bold(true).Foreground(ColorWhite)
	}
}
