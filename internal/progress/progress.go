// Package progress draws an in-place progress line through a logging.Logger.
//
// A Progress holds at most one session. Start opens it, Update advances it
// and redraws the line with elapsed time, ETA and remaining time, and the
// session closes itself when the maximum is reached. While a session is open
// a watchdog goroutine appends a small stall marker whenever no update has
// arrived for a while, so long gaps do not look like a hung process.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"conlog/internal/config"
	"conlog/internal/logging"
)

const (
	// DefaultMax is used when Start is called with max == 0.
	DefaultMax = 100
	// DefaultTickInterval is how often the watchdog checks for stalls.
	DefaultTickInterval = 5 * time.Second
	// DefaultStallAfter is the quiet period before a stall marker is drawn.
	DefaultStallAfter = 6 * time.Second
)

var (
	// ErrNoActiveProgress is returned by Update and Stop while idle.
	ErrNoActiveProgress = errors.New("no active progress session")
	// ErrProgressActive is returned by Start while a session is open.
	ErrProgressActive = errors.New("progress session already active")
)

// Session is a snapshot of the progress state. Max == 0 means idle.
type Session struct {
	Message   string
	Max       int
	Current   int
	StartTime time.Time
	LastTime  time.Time
	Touched   bool
}

// Progress is a Logger with a single progress session.
type Progress struct {
	*logging.Logger

	mu       sync.Mutex
	session  Session
	watchdog *watchdog
	gen      uint64
	running  sync.WaitGroup

	tick       time.Duration
	stallAfter time.Duration
	clock      func() time.Time
	randN      func(n int) int
}

// Option configures a Progress.
type Option func(*Progress)

// WithTickInterval sets the watchdog interval.
func WithTickInterval(d time.Duration) Option {
	return func(p *Progress) {
		if d > 0 {
			p.tick = d
		}
	}
}

// WithStallAfter sets how long a session may stay quiet before a stall marker
// is drawn.
func WithStallAfter(d time.Duration) Option {
	return func(p *Progress) {
		if d > 0 {
			p.stallAfter = d
		}
	}
}

// WithClock overrides the time source used for durations and stall checks.
func WithClock(clock func() time.Time) Option {
	return func(p *Progress) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithRand overrides the random source used by the stall marker. fn must
// return a value in [0, n).
func WithRand(fn func(n int) int) Option {
	return func(p *Progress) {
		if fn != nil {
			p.randN = fn
		}
	}
}

// FromConfig applies the [progress] configuration section.
func FromConfig(cfg config.Progress) Option {
	return func(p *Progress) {
		if cfg.TickIntervalSeconds > 0 {
			p.tick = time.Duration(cfg.TickIntervalSeconds * float64(time.Second))
		}
		if cfg.StallAfterSeconds > 0 {
			p.stallAfter = time.Duration(cfg.StallAfterSeconds * float64(time.Second))
		}
	}
}

// New wraps logger. A nil logger gets a default one.
func New(logger *logging.Logger, opts ...Option) *Progress {
	if logger == nil {
		logger = logging.New()
	}
	p := &Progress{
		Logger:     logger,
		tick:       DefaultTickInterval,
		stallAfter: DefaultStallAfter,
		clock:      logger.Now,
		randN:      rand.IntN,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start opens a session of the given units (DefaultMax when 0) and draws the
// initial marker, preceded by message when it is not blank.
func (p *Progress) Start(units int, message string) error {
	if units < 0 {
		return fmt.Errorf("start progress: max must not be negative, got %d", units)
	}
	if units == 0 {
		units = DefaultMax
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Max > 0 {
		return ErrProgressActive
	}

	now := p.clock()
	message = strings.TrimSpace(message)
	p.session = Session{Message: message, Max: units, StartTime: now, LastTime: now}
	p.startWatchdogLocked()

	if message != "" {
		p.LogRaw("\n::: " + message + "\n")
	} else {
		p.LogRaw("\n")
	}
	p.LogRaw(fmt.Sprintf("::: [ 0 / %d ] :::", units))
	p.ReportProgress(logging.ProgressEvent{
		Phase:   logging.ProgressStarted,
		Message: message,
		Max:     units,
		At:      now,
	})
	return nil
}

// Update advances the session by n units and redraws the progress line.
// n == 0 only redraws; negative n is rejected. Reaching the maximum completes
// the session.
func (p *Progress) Update(n int) error {
	if n < 0 {
		return fmt.Errorf("update progress: n must not be negative, got %d", n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Max <= 0 {
		return ErrNoActiveProgress
	}
	p.advanceLocked(n)
	return nil
}

// Step advances the session by one unit.
func (p *Progress) Step() error {
	return p.Update(1)
}

// Stop completes the session regardless of how far it got.
func (p *Progress) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Max <= 0 {
		return ErrNoActiveProgress
	}
	p.advanceLocked(p.session.Max)
	return nil
}

// Active reports whether a session is open.
func (p *Progress) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Max > 0
}

// Snapshot returns a copy of the session state.
func (p *Progress) Snapshot() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Finalize stops any running watchdog and finalizes the logger's sinks. An
// open session is abandoned without drawing a completion line.
func (p *Progress) Finalize(ctx context.Context) {
	p.mu.Lock()
	p.stopWatchdogLocked()
	p.session = Session{}
	p.mu.Unlock()
	p.Logger.Finalize(ctx)
}

func (p *Progress) advanceLocked(n int) {
	s := &p.session
	now := p.clock()
	s.Touched = false
	s.LastTime = now
	s.Current += n

	elapsed := now.Sub(s.StartTime)
	var average time.Duration
	if s.Current != 0 {
		average = time.Duration(math.Abs(float64(elapsed) / float64(s.Current)))
	}
	remaining := average * time.Duration(s.Max-s.Current)

	p.ClearCurrentLine()

	if s.Current < s.Max {
		percent := float64(s.Current) / float64(s.Max) * 100
		eta := now.Add(remaining)
		p.LogRaw(fmt.Sprintf("::: [ %d %% → %d / %d ] ::: [ Time: %s ] ::: [ ETA: %s ] ::: [ Remaining: %s ]",
			int(math.Round(percent)), s.Current, s.Max,
			logging.FormatDuration(elapsed), logging.FormatClock(eta), logging.FormatDuration(remaining)))
		p.ReportProgress(logging.ProgressEvent{
			Phase:     logging.ProgressAdvanced,
			Message:   s.Message,
			Current:   s.Current,
			Max:       s.Max,
			Percent:   percent,
			Elapsed:   elapsed,
			Remaining: remaining,
			ETA:       eta,
			At:        now,
		})
		return
	}

	p.stopWatchdogLocked()
	p.LogRaw(fmt.Sprintf("::: [ %d units ] ::: [ Completed in: %s ]\n", s.Max, logging.FormatDuration(elapsed)))
	p.ReportProgress(logging.ProgressEvent{
		Phase:   logging.ProgressCompleted,
		Message: s.Message,
		Current: s.Current,
		Max:     s.Max,
		Percent: 100,
		Elapsed: elapsed,
		At:      now,
	})
	p.session = Session{}
}
