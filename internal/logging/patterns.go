package logging

import (
	"path"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

func stripEscapes(s string) string {
	return text.StripEscape(s)
}

// StripEscapes removes ANSI escape sequences from s.
func StripEscapes(s string) string { return stripEscapes(s) }

// MatchSubject reports whether subject matches any of the glob patterns. An
// empty pattern list matches everything; malformed patterns compare literally.
func MatchSubject(patterns []string, subject string) bool {
	active := 0
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		active++
		ok, err := path.Match(pattern, subject)
		if err != nil {
			ok = pattern == subject
		}
		if ok {
			return true
		}
	}
	return active == 0
}

// SubjectOf returns the plain primary subject carried by a sink payload, or
// "" when the payload has no subject.
func SubjectOf(items []any) string {
	if len(items) < 2 {
		return ""
	}
	s, ok := items[0].(string)
	if !ok {
		return ""
	}
	primary, _ := PlainSubject(s)
	return primary
}

// SplitPayload separates the subject from the rest of a sink payload.
func SplitPayload(items []any) (subject string, rest []any) {
	if len(items) < 2 {
		return "", items
	}
	if s, ok := items[0].(string); ok {
		return stripEscapes(s), items[1:]
	}
	return "", items
}
