package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// GroupHeaderStyle renders a subgroup heading row in the estimate table.
var GroupHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1)

// GroupTotalStyle renders the per-group subtotal line.
var GroupTotalStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	PaddingLeft(2)

// ProjectTotalStyle renders the project-wide total.
var ProjectTotalStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen).
	Padding(0, 1)

// TaxRowStyle marks percentage tax rows in the table.
var TaxRowStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// MovingRowStyle highlights the row being relocated in move mode.
var MovingRowStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorOrange)

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

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders transient error banners.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// DetailPanelStyle wraps form and detail content areas.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SaveStateStyle returns a color-coded style for the persistence state
// shown in the status bar.
func SaveStateStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch state {
	case "saved":
		return base.Foreground(ColorGreen)
	case "pending":
		return base.Foreground(ColorYellow)
	case "saving":
		return base.Foreground(ColorBlue)
	case "error":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// GroupColorStyle maps a group's stored hex color onto a terminal style
// for its heading. Unknown or empty colors fall back to the default.
func GroupColorStyle(hex string) lipgloss.Style {
	if hex == "" || hex == "#ffffff" {
		return GroupHeaderStyle.Foreground(ColorWhite)
	}
	return GroupHeaderStyle.Foreground(lipgloss.Color(hex))
}
