package logging

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SubjectSeparator splits a subject into its primary and secondary parts.
const SubjectSeparator = "::"

// SplitSubject cuts subject at the first separator.
func SplitSubject(subject string) (primary, secondary string) {
	primary, secondary, _ = strings.Cut(subject, SubjectSeparator)
	return primary, secondary
}

// SeenSubjects returns the primary subjects in first-seen order.
func (l *Logger) SeenSubjects() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.seen)
}

func (l *Logger) parseSubjectLocked(items []any) []any {
	out := slices.Clone(items)
	if len(out) < 2 {
		return out
	}
	if subject, ok := out[0].(string); ok {
		out[0] = l.renderSubjectLocked(subject)
	}
	return out
}

// renderSubjectLocked emphasizes a primary subject the first time it appears
// and de-emphasizes it afterwards. Repeats that do not start with a letter or
// digit are left as is.
func (l *Logger) renderSubjectLocked(subject string) string {
	primary, secondary := SplitSubject(subject)

	rendered := primary
	switch {
	case !slices.Contains(l.seen, primary):
		l.seen = append(l.seen, primary)
		rendered = PrimarySubject(primary, l.colour)
	case startsAlphanumeric(primary):
		rendered = SecondarySubject(primary)
	}

	if secondary != "" {
		rendered = SubObjective(rendered, secondary, l.colour)
	}
	return rendered
}

func startsAlphanumeric(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PlainSubject recovers the primary and secondary subject text from a
// rendered subject, stripping colour and emphasis markers.
func PlainSubject(rendered string) (primary, secondary string) {
	s := stripEscapes(rendered)
	s = strings.TrimPrefix(s, "> ")
	s = strings.TrimSuffix(s, " →")
	primary, secondary = SplitSubject(s)
	return strings.TrimRight(primary, ":"), strings.TrimRight(secondary, ":")
}
