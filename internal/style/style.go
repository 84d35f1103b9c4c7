// Package style provides the styled output capability used by the standard
// printer: a writer that also knows how to render highlighted text.
package style

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Role identifies what part of the output a piece of text is.
type Role int

const (
	// RolePath is a file path.
	RolePath Role = iota
	// RoleLine is a line number.
	RoleLine
	// RoleColumn is a column number.
	RoleColumn
	// RoleMatch is the matched text inside a line.
	RoleMatch
	// RoleSeparator is a field or context separator.
	RoleSeparator
)

// ANSI color numbers used by the default palette.
const (
	ColorMagenta = "5"
	ColorGreen   = "2"
	ColorRed     = "1"
	ColorGray    = "245"
)

// ColorChoice is the user's color preference.
type ColorChoice int

const (
	// ColorAuto enables color when the destination is a terminal.
	ColorAuto ColorChoice = iota
	// ColorNever disables color.
	ColorNever
	// ColorAlways enables color regardless of the destination.
	ColorAlways
)

// ParseColorChoice converts a --color flag value.
func ParseColorChoice(s string) (ColorChoice, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "never":
		return ColorNever, nil
	case "always", "ansi":
		return ColorAlways, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color choice %q", s)
	}
}

// Palette maps roles to styles. The zero value renders everything plainly.
type Palette struct {
	styles map[Role]lipgloss.Style
}

// PlainPalette returns a palette that never adds escape sequences.
func PlainPalette() Palette {
	return Palette{}
}

// ColorPalette returns the default palette rendered through r.
func ColorPalette(r *lipgloss.Renderer) Palette {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return Palette{styles: map[Role]lipgloss.Style{
		RolePath:      base.Foreground(lipgloss.Color(ColorMagenta)),
		RoleLine:      base.Foreground(lipgloss.Color(ColorGreen)),
		RoleColumn:    base.Foreground(lipgloss.Color(ColorGreen)),
		RoleMatch:     base.Bold(true).Foreground(lipgloss.Color(ColorRed)),
		RoleSeparator: base.Foreground(lipgloss.Color(ColorGray)),
	}}
}

// Enabled reports whether the palette adds any styling.
func (p Palette) Enabled() bool {
	return len(p.styles) > 0
}

// Render styles s for the given role.
func (p Palette) Render(role Role, s string) string {
	if s == "" {
		return s
	}
	st, ok := p.styles[role]
	if !ok {
		return s
	}
	return st.Render(s)
}

// DetectPalette picks a palette for output going to f.
// NO_COLOR disables color in auto mode.
func DetectPalette(f *os.File, choice ColorChoice) Palette {
	switch choice {
	case ColorNever:
		return PlainPalette()
	case ColorAlways:
		r := lipgloss.NewRenderer(f)
		r.SetColorProfile(termenv.ANSI256)
		return ColorPalette(r)
	}

	if DetectNoColor() || !IsTerminal(f) {
		return PlainPalette()
	}
	return ColorPalette(lipgloss.NewRenderer(f))
}

// Writer is a destination for formatted bytes that can render styled text.
type Writer interface {
	io.Writer
	Render(role Role, s string) string
}

type paletteWriter struct {
	io.Writer
	palette Palette
}

func (w *paletteWriter) Render(role Role, s string) string {
	return w.palette.Render(role, s)
}

// NewWriter binds a palette to w.
func NewWriter(w io.Writer, p Palette) Writer {
	return &paletteWriter{Writer: w, palette: p}
}

// Plain wraps w with a palette that renders nothing.
func Plain(w io.Writer) Writer {
	return NewWriter(w, PlainPalette())
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
