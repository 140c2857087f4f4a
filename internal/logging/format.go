package logging

import (
	"fmt"
	"time"
)

const (
	logTimestampLayout = "2006-01-02 15:04:05"
	clockLayout        = "15:04:05"
)

// FormatTimestamp renders ts in local time using the log timestamp layout.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// FormatClock renders the wall-clock part of ts, used for ETA values.
func FormatClock(ts time.Time) string {
	if ts.IsZero() {
		return "--:--:--"
	}
	return ts.In(time.Local).Format(clockLayout)
}

// FormatDuration renders d for humans: "850ms", "4.2s", "3m 05s", "1h 02m 09s".
// Negative durations are rendered by magnitude.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	// Round to the displayed precision before picking a unit.
	if tenths := d.Round(100 * time.Millisecond); tenths < time.Minute {
		return fmt.Sprintf("%.1fs", tenths.Seconds())
	}
	d = d.Round(time.Second)
	if d < time.Hour {
		return fmt.Sprintf("%dm %02ds", int(d/time.Minute), int(d%time.Minute/time.Second))
	}
	return fmt.Sprintf("%dh %02dm %02ds", int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second))
}

// DurationLog renders a timing marker. A zero start yields a START marker,
// otherwise an END marker with the elapsed duration up to now.
func DurationLog(start, now time.Time, identifier string) string {
	heading := "START"
	if !start.IsZero() {
		heading = "END"
	}
	if identifier != "" {
		heading = identifier + ", " + heading
	}
	if start.IsZero() {
		return fmt.Sprintf("[ %s: %s ]", heading, FormatTimestamp(now))
	}
	return fmt.Sprintf("[ %s: %s, DURATION: %s ]", heading, FormatTimestamp(now), FormatDuration(now.Sub(start)))
}
