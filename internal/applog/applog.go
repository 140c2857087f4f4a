// Package applog formats one-shot application messages with a severity
// heading. It keeps no state and does not go through a Logger: tags are
// matched case-insensitively, unlike Logger subjects.
package applog

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"

	"conlog/internal/logging"
)

// Severity is a recognized leading tag.
type Severity string

const (
	Notice    Severity = "notice"
	Info      Severity = "info"
	Error     Severity = "error"
	Warning   Severity = "warning"
	Danger    Severity = "danger"
	Crash     Severity = "crash"
	Explosion Severity = "explosion"
	Success   Severity = "success"
	Alert     Severity = "alert"
	Debug     Severity = "debug"
)

var severities = []Severity{Notice, Info, Error, Warning, Danger, Crash, Explosion, Success, Alert, Debug}

var folder = cases.Fold()

// Label returns the heading suffix for s.
func (s Severity) Label() string {
	switch s {
	case Error:
		return "Error:"
	case Alert:
		return "Alert:"
	case Danger, Crash, Explosion:
		return "Crash"
	case Warning:
		return "Warning:"
	case Notice, Info:
		return "Info:"
	case Debug:
		return "Debug:"
	case Success:
		return "Success:"
	default:
		return "Notice:"
	}
}

// Colours returns the heading colour for s.
func (s Severity) Colours() text.Colors {
	switch s {
	case Error, Danger, Crash, Explosion:
		return text.Colors{text.FgRed}
	case Alert:
		return text.Colors{text.FgHiRed}
	case Warning:
		return text.Colors{text.FgYellow}
	case Notice, Info:
		return text.Colors{text.FgBlue}
	case Debug:
		return text.Colors{text.FgGreen}
	case Success:
		return text.Colors{text.FgHiGreen}
	default:
		return text.Colors{text.FgCyan}
	}
}

// Level maps s onto a log level name: error, warn, debug or info.
func (s Severity) Level() string {
	switch s {
	case Error, Danger, Crash, Explosion:
		return "error"
	case Warning, Alert:
		return "warn"
	case Debug:
		return "debug"
	default:
		return "info"
	}
}

// Lookup matches tag against the known severities, ignoring case.
func Lookup(tag string) (Severity, bool) {
	folded := folder.String(strings.TrimSpace(tag))
	for _, s := range severities {
		if folded == string(s) {
			return s, true
		}
	}
	return "", false
}

// Parse consumes a leading severity tag. The tag is only consumed when more
// items follow it; untagged messages are Notice.
func Parse(items []any) (Severity, []any) {
	if len(items) > 1 {
		if tag, ok := items[0].(string); ok {
			if s, ok := Lookup(tag); ok {
				return s, items[1:]
			}
		}
	}
	return Notice, items
}

// Line is a formatted message.
type Line struct {
	Severity Severity
	Heading  string
	Text     string
}

// String renders the line without colour.
func (l Line) String() string {
	if l.Text == "" {
		return l.Heading
	}
	return l.Heading + " " + l.Text
}

// Format builds the line for app. Leading strings are joined with " → ";
// anything after the first non-string is appended space separated.
func Format(app string, items ...any) Line {
	severity, rest := Parse(items)
	heading := severity.Label()
	if app = strings.TrimSpace(app); app != "" {
		heading = app + " " + heading
	}
	return Line{Severity: severity, Heading: heading, Text: joinMessage(flatten(rest))}
}

// Write formats and writes one line to w.
func Write(w io.Writer, colour bool, app string, items ...any) error {
	line := Format(app, items...)
	heading := logging.Colourize(line.Heading, colour, line.Severity.Colours()...)
	out := heading
	if line.Text != "" {
		out += " " + line.Text
	}
	if _, err := fmt.Fprintln(w, out); err != nil {
		return fmt.Errorf("write app log: %w", err)
	}
	return nil
}

// flatten spreads a lone slice argument into the message.
func flatten(items []any) []any {
	if len(items) != 1 || items[0] == nil {
		return items
	}
	rv := reflect.ValueOf(items[0])
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return items
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func joinMessage(items []any) string {
	var heads []string
	i := 0
	for ; i < len(items); i++ {
		s, ok := items[i].(string)
		if !ok {
			break
		}
		heads = append(heads, s)
	}
	parts := make([]string, 0, len(items)-i+1)
	if len(heads) > 0 {
		parts = append(parts, strings.Join(heads, " → "))
	}
	for _, item := range items[i:] {
		parts = append(parts, logging.Stringify(item))
	}
	return strings.Join(parts, " ")
}
