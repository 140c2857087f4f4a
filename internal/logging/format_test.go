package logging

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{4200 * time.Millisecond, "4.2s"},
		{-4200 * time.Millisecond, "4.2s"},
		{3*time.Minute + 5*time.Second, "3m 05s"},
		{time.Hour + 2*time.Minute + 9*time.Second, "1h 02m 09s"},
		{59940 * time.Millisecond, "59.9s"},
		{59950 * time.Millisecond, "1m 00s"},
		{59999 * time.Millisecond, "1m 00s"},
		{time.Hour - 400*time.Millisecond, "1h 00m 00s"},
		{time.Hour - 500*time.Millisecond, "1h 00m 00s"},
		{time.Hour - 600*time.Millisecond, "59m 59s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDurationLog(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	if got := DurationLog(time.Time{}, now, ""); got != "[ START: 2026-01-02 03:04:05 ]" {
		t.Errorf("start marker = %q", got)
	}
	if got := DurationLog(time.Time{}, now, "DEBUG"); got != "[ DEBUG, START: 2026-01-02 03:04:05 ]" {
		t.Errorf("identified start marker = %q", got)
	}
	got := DurationLog(now.Add(-90*time.Second), now, "DEBUG")
	if got != "[ DEBUG, END: 2026-01-02 03:04:05, DURATION: 1m 30s ]" {
		t.Errorf("end marker = %q", got)
	}
	if !strings.Contains(DurationLog(now.Add(time.Second), now, ""), "DURATION: 1.0s") {
		t.Error("a start after now should still report a non-negative duration")
	}
}

func TestColourHelpersPlain(t *testing.T) {
	if got := PrimarySubject("Title::", false); got != "Title:" {
		t.Errorf("PrimarySubject = %q", got)
	}
	if got := SecondarySubject("Title:"); got != "> Title:" {
		t.Errorf("SecondarySubject = %q", got)
	}
	if got := SubObjective("Title:", "part", false); got != "Title::part →" {
		t.Errorf("SubObjective = %q", got)
	}
	if got := PrettyArrow("Heads up", false); got != "---> Heads up <---" {
		t.Errorf("PrettyArrow = %q", got)
	}
}

func TestColourHelpersColoured(t *testing.T) {
	got := PrettyArrow("Heads up", true)
	if StripEscapes(got) != "---> Heads up <---" {
		t.Errorf("escapes should wrap plain text, got %q", got)
	}
}

func TestParseColourMode(t *testing.T) {
	for in, want := range map[string]ColourMode{"": ColourAuto, "AUTO": ColourAuto, "always": ColourAlways, "never": ColourNever} {
		got, err := ParseColourMode(in)
		if err != nil || got != want {
			t.Errorf("ParseColourMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColourMode("sometimes"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
