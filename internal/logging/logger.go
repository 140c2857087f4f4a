package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger is the logging façade. It is safe for concurrent use; dispatch is
// serialized so each sink sees one complete message at a time, in
// registration order.
//
// Sinks must not call back into the Logger that owns them.
type Logger struct {
	mu sync.Mutex

	name     string
	output   io.Writer
	colour   bool
	clock    func() time.Time
	registry *Registry
	diag     *slog.Logger
	fallback func() Sink
	width    func() int

	sinks       []namedSink
	established bool
	seen        []string
	enabled     bool
	alwaysLog   bool
	debugStart  time.Time
	sessionID   string
}

type namedSink struct {
	name string
	sink Sink
}

type settings struct {
	name     string
	output   io.Writer
	colour   ColourMode
	registry *Registry
	clock    func() time.Time
	diag     *slog.Logger
	fallback func() Sink
	width    func() int
}

// Option configures a Logger.
type Option func(*settings)

// WithName labels the logger; sinks receive it through Owner.
func WithName(name string) Option {
	return func(s *settings) { s.name = strings.TrimSpace(name) }
}

// WithOutput sets the writer used by StandardOut and the fallback sink.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

// WithColour selects the colour mode. ColourAuto colours terminals only.
func WithColour(mode ColourMode) Option {
	return func(s *settings) { s.colour = mode }
}

// WithRegistry sets the registry used to resolve sink names.
func WithRegistry(r *Registry) Option {
	return func(s *settings) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDiagnostics sets the slog logger used for conlog's own diagnostics.
func WithDiagnostics(diag *slog.Logger) Option {
	return func(s *settings) {
		if diag != nil {
			s.diag = diag
		}
	}
}

// WithFallback overrides the sink that renders dispatch failures.
func WithFallback(fallback func() Sink) Option {
	return func(s *settings) { s.fallback = fallback }
}

// WithTerminalWidth overrides terminal width detection for StandardOut.
func WithTerminalWidth(width func() int) Option {
	return func(s *settings) { s.width = width }
}

// New constructs a Logger. Logging starts enabled and no registry is
// established, so the first log call installs StandardOut.
func New(opts ...Option) *Logger {
	cfg := settings{
		output: os.Stdout,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	if cfg.diag == nil {
		cfg.diag = NewNop()
	}
	l := &Logger{
		name:      cfg.name,
		output:    cfg.output,
		colour:    ResolveColour(cfg.colour, cfg.output),
		clock:     cfg.clock,
		registry:  cfg.registry,
		diag:      cfg.diag,
		fallback:  cfg.fallback,
		width:     cfg.width,
		enabled:   true,
		sessionID: uuid.NewString(),
	}
	if l.fallback == nil {
		out := l.output
		l.fallback = func() Sink { return NewConsole(out) }
	}
	return l
}

// Name returns the logger label.
func (l *Logger) Name() string { return l.name }

// Colour reports whether ANSI decoration is applied.
func (l *Logger) Colour() bool { return l.colour }

// Output returns the writer backing StandardOut.
func (l *Logger) Output() io.Writer { return l.output }

// Now reads the logger clock.
func (l *Logger) Now() time.Time { return l.clock() }

// SessionID identifies the current Initialize cycle.
func (l *Logger) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionID
}

// SetLoggingEnabled toggles normal output.
func (l *Logger) SetLoggingEnabled(enabled bool) {
	l.mu.Lock()
	l.enabled = enabled
	l.mu.Unlock()
}

// SetAlwaysLog forces output even when logging is disabled.
func (l *Logger) SetAlwaysLog(always bool) {
	l.mu.Lock()
	l.alwaysLog = always
	l.mu.Unlock()
}

// LoggingEnabled reports the enabled flag, ignoring SetAlwaysLog.
func (l *Logger) LoggingEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// ShouldLog reports whether gated calls currently produce output.
func (l *Logger) ShouldLog() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shouldLogLocked()
}

func (l *Logger) shouldLogLocked() bool {
	return l.enabled || l.alwaysLog
}

// Log dispatches items to every enabled sink. A leading string followed by
// more items is rendered as a subject.
func (l *Logger) Log(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.shouldLogLocked() {
		return
	}
	l.dispatchLocked(l.parseSubjectLocked(items), deliverLog)
}

// LogAny dispatches items without subject handling.
func (l *Logger) LogAny(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.shouldLogLocked() {
		return
	}
	l.dispatchLocked(items, deliverLog)
}

// LogRaw writes items through each sink's raw path, falling back to Log for
// sinks without one.
func (l *Logger) LogRaw(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.shouldLogLocked() {
		return
	}
	l.dispatchLocked(items, deliverRaw)
}

// LogRawSubject is LogRaw with subject handling applied to the first item.
func (l *Logger) LogRawSubject(items ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.shouldLogLocked() {
		return
	}
	l.dispatchLocked(l.parseSubjectLocked(items), deliverRaw)
}

// ClearCurrentLine asks every sink that supports it to erase the line being
// drawn.
func (l *Logger) ClearCurrentLine() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureInitializedLocked()
	for _, ns := range l.sinks {
		l.deliverLocked(ns, "clear", func(s Sink) error {
			if c, ok := s.(LineClearer); ok {
				return c.ClearCurrentLine()
			}
			return nil
		})
	}
}

// ReportProgress forwards a progress transition to sinks implementing
// ProgressSink.
func (l *Logger) ReportProgress(evt ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.shouldLogLocked() {
		return
	}
	l.ensureInitializedLocked()
	if evt.At.IsZero() {
		evt.At = l.clock()
	}
	for _, ns := range l.sinks {
		l.deliverLocked(ns, "progress", func(s Sink) error {
			if p, ok := s.(ProgressSink); ok {
				return p.Progress(evt)
			}
			return nil
		})
	}
}

// Initialize replaces the sink set with the named sinks. Unknown names are
// skipped. Factory and setup failures are reported through the fallback sink
// and never returned; an empty name list leaves the logger with no sinks.
func (l *Logger) Initialize(ctx context.Context, names []string, opts SinkOptions) {
	if ctx == nil {
		ctx = context.Background()
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sinks = nil
	l.established = true
	l.sessionID = uuid.NewString()
	owner := l.ownerLocked()

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if l.hasSinkLocked(name) {
			continue
		}
		factory, ok := l.registry.Lookup(name)
		if !ok {
			l.diag.Debug("unknown sink ignored", String("sink", name))
			continue
		}
		var sink Sink
		err := protect(func() error {
			var ferr error
			sink, ferr = factory(owner)
			return ferr
		})
		if err != nil {
			l.reportFailureLocked(&SinkError{Sink: name, Op: "create", Err: err})
			continue
		}
		if sink == nil {
			continue
		}
		ns := namedSink{name: name, sink: sink}
		l.sinks = append(l.sinks, ns)
		l.deliverLocked(ns, "initialize", func(s Sink) error {
			if init, ok := s.(Initializer); ok {
				return init.Initialize(ctx, opts)
			}
			return nil
		})
	}
}

// Finalize tears down every enabled sink. Failures are isolated.
func (l *Logger) Finalize(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ns := range l.sinks {
		l.deliverLocked(ns, "finalize", func(s Sink) error {
			if fin, ok := s.(Finalizer); ok {
				return fin.Finalize(ctx)
			}
			return nil
		})
	}
}

// SinkNames lists the active sinks in dispatch order.
func (l *Logger) SinkNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.sinks))
	for i, ns := range l.sinks {
		names[i] = ns.name
	}
	return names
}

func (l *Logger) hasSinkLocked(name string) bool {
	for _, ns := range l.sinks {
		if ns.name == name {
			return true
		}
	}
	return false
}

func (l *Logger) ownerLocked() Owner {
	return Owner{
		LoggerName:  l.name,
		SessionID:   l.sessionID,
		Output:      l.output,
		Colour:      l.colour,
		Clock:       l.clock,
		Diagnostics: l.diag,
		Width:       l.width,
	}
}
