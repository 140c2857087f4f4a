package logging

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// ColourMode selects when ANSI decoration is applied.
type ColourMode int

const (
	ColourAuto ColourMode = iota
	ColourAlways
	ColourNever
)

// ParseColourMode maps auto|always|never to a ColourMode.
func ParseColourMode(value string) (ColourMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return ColourAuto, nil
	case "always", "on", "true":
		return ColourAlways, nil
	case "never", "off", "false":
		return ColourNever, nil
	default:
		return ColourAuto, fmt.Errorf("colour mode: unsupported value %q", value)
	}
}

func (m ColourMode) String() string {
	switch m {
	case ColourAlways:
		return "always"
	case ColourNever:
		return "never"
	default:
		return "auto"
	}
}

// Colourize wraps s in the given colours when enabled.
func Colourize(s string, enabled bool, colours ...text.Color) string {
	if !enabled || len(colours) == 0 {
		return s
	}
	return text.Colors(colours).Sprint(s)
}

// PrimarySubject underlines a first-seen subject and terminates it with ":".
func PrimarySubject(s string, colour bool) string {
	return Colourize(strings.TrimRight(s, ":"), colour, text.Underline) + ":"
}

// SecondarySubject renders a repeated subject. It is never coloured.
func SecondarySubject(s string) string {
	return "> " + strings.TrimRight(s, ":") + ":"
}

// SubObjective appends a qualifier to an already rendered subject.
func SubObjective(subject, qualifier string, colour bool) string {
	return subject + ":" + Colourize(qualifier, colour, text.FgWhite) + " →"
}

// PrettyArrow renders an attention line such as "---> Title <---".
func PrettyArrow(s string, colour bool) string {
	return Colourize("---> ", colour, text.FgMagenta) +
		Colourize(s, colour, text.FgMagenta, text.Underline) +
		Colourize(" <---", colour, text.FgMagenta)
}

// ColourPrimary is PrimarySubject using the logger's colour setting.
func (l *Logger) ColourPrimary(s string) string { return PrimarySubject(s, l.colour) }

// ColourSecondary is SecondarySubject.
func (l *Logger) ColourSecondary(s string) string { return SecondarySubject(s) }

// ColourPrettyArrow is PrettyArrow using the logger's colour setting.
func (l *Logger) ColourPrettyArrow(s string) string { return PrettyArrow(s, l.colour) }

// ColourText applies arbitrary colours using the logger's colour setting.
func (l *Logger) ColourText(s string, colours ...text.Color) string {
	return Colourize(s, l.colour, colours...)
}

// ColourSubObjective is SubObjective using the logger's colour setting.
func (l *Logger) ColourSubObjective(subject, qualifier string) string {
	return SubObjective(subject, qualifier, l.colour)
}
