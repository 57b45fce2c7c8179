package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/yetidevworks/raygun/internal/dump"
)

// colorProfile detects the terminal's color capability once at startup, so
// colorDot can fall back to a plain marker on terminals that can't render
// ANSI color (e.g. piped output, dumb terminals) rather than emitting
// escape codes the reader can't display.
var colorProfile = termenv.EnvColorProfile()

var (
	colorMuted    = lipgloss.Color("242")
	colorSelected = lipgloss.Color("39")
	colorWhite    = lipgloss.Color("15")
	colorKey      = lipgloss.Color("214")
	colorType     = lipgloss.Color("244")
	colorString   = lipgloss.Color("76")
	colorBoolean  = lipgloss.Color("39")
	colorNull     = lipgloss.Color("242")
	colorNumber   = lipgloss.Color("212")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSelected)

	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)

	selectedRowStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(colorWhite).Bold(true)

	normalRowStyle = lipgloss.NewStyle().Foreground(colorWhite)

	ageStyle = lipgloss.NewStyle().Foreground(colorMuted)

	kindStyle = lipgloss.NewStyle().Foreground(colorKey).Bold(true)

	footerStyle = lipgloss.NewStyle().Foreground(colorMuted)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSelected).
			Padding(1, 2)
)

// segmentStyle maps a dump.SegmentStyle to its terminal rendering style,
// following the detail line's styled-segment classification.
func segmentStyle(s dump.SegmentStyle) lipgloss.Style {
	switch s {
	case dump.Key:
		return lipgloss.NewStyle().Foreground(colorKey)
	case dump.TypeTag:
		return lipgloss.NewStyle().Foreground(colorType).Italic(true)
	case dump.String:
		return lipgloss.NewStyle().Foreground(colorString)
	case dump.Boolean:
		return lipgloss.NewStyle().Foreground(colorBoolean)
	case dump.Null:
		return lipgloss.NewStyle().Foreground(colorNull).Italic(true)
	case dump.Number:
		return lipgloss.NewStyle().Foreground(colorNumber)
	default:
		return lipgloss.NewStyle().Foreground(colorWhite)
	}
}

// namedColors maps the free-form color strings ray clients send (e.g.
// `{"type":"color","content":{"color":"green"}}`) to a terminal color. An
// unrecognized name renders with no color rather than guessing.
var namedColors = map[string]lipgloss.Color{
	"red":    lipgloss.Color("196"),
	"green":  lipgloss.Color("76"),
	"blue":   lipgloss.Color("39"),
	"yellow": lipgloss.Color("220"),
	"orange": lipgloss.Color("214"),
	"purple": lipgloss.Color("134"),
	"gray":   lipgloss.Color("242"),
	"grey":   lipgloss.Color("242"),
}

// colorDot renders a one-character swatch for an event's tail color, or a
// blank space when the color name isn't recognized.
func colorDot(name string) string {
	c, ok := namedColors[strings.ToLower(name)]
	if !ok {
		return " "
	}
	if colorProfile == termenv.Ascii {
		return "●"
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}
