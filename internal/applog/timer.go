package applog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"conlog/internal/logging"
)

// Timer measures named durations, printing "Times: <key>: <duration>" when a
// key is stopped.
type Timer struct {
	mu     sync.Mutex
	w      io.Writer
	clock  func() time.Time
	starts map[string]time.Time
}

// NewTimer writes results to w. A nil clock uses time.Now.
func NewTimer(w io.Writer, clock func() time.Time) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{w: w, clock: clock, starts: make(map[string]time.Time)}
}

// Start begins timing key, restarting it when already running.
func (t *Timer) Start(key string) {
	t.mu.Lock()
	t.starts[key] = t.clock()
	t.mu.Unlock()
}

// Stop prints and returns the elapsed time for key. Stopping a key that was
// never started prints a warning instead.
func (t *Timer) Stop(key string) (time.Duration, error) {
	t.mu.Lock()
	start, ok := t.starts[key]
	delete(t.starts, key)
	now := t.clock()
	t.mu.Unlock()

	label := "Times: " + key
	if !ok {
		_, err := fmt.Fprintf(t.w, "Warning: No such label '%s'\n", label)
		return 0, err
	}
	elapsed := now.Sub(start)
	_, err := fmt.Fprintf(t.w, "%s: %s\n", label, logging.FormatDuration(elapsed))
	return elapsed, err
}
