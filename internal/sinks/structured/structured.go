// Package structured emits façade output as JSON lines through zerolog.
package structured

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"conlog/internal/applog"
	"conlog/internal/logging"
)

// Name is the registry name of the structured sink.
const Name = "Structured"

// Options configures the structured sink.
type Options struct {
	// Output is "stdout", "stderr" or a file path.
	Output string
	Level  string
	// Writer overrides Output when set.
	Writer io.Writer
}

// Sink writes one JSON object per log call and per progress transition.
// Raw output is terminal redraw noise and is dropped.
type Sink struct {
	opts  Options
	owner logging.Owner

	mu       sync.Mutex
	logger   zerolog.Logger
	closer   io.Closer
	patterns  []string
	open      bool
	finalized bool
}

// Factory returns a registry factory for opts.
func Factory(opts Options) logging.Factory {
	return func(owner logging.Owner) (logging.Sink, error) {
		return New(opts, owner), nil
	}
}

// New constructs a structured sink.
func New(opts Options, owner logging.Owner) *Sink {
	return &Sink{opts: opts, owner: owner, logger: zerolog.Nop()}
}

// Enabled reports whether the sink still accepts setup and writes. It turns
// false once Finalize runs; events before Initialize are dropped.
func (s *Sink) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finalized
}

// Open reports whether Initialize bound an output.
func (s *Sink) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Initialize opens the output and binds the logger, session and context
// fields.
func (s *Sink) Initialize(_ context.Context, opts logging.SinkOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	if s.finalized {
		return errors.New("structured sink: already finalized")
	}
	w, closer, err := s.openOutput()
	if err != nil {
		return err
	}
	level, err := parseLevel(s.opts.Level)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return err
	}
	ctx := zerolog.New(w).Level(level).With().
		Str("session", s.owner.SessionID)
	if s.owner.LoggerName != "" {
		ctx = ctx.Str("logger", s.owner.LoggerName)
	}
	if opts.Context != "" {
		ctx = ctx.Str("context", opts.Context)
	}
	s.logger = ctx.Logger()
	s.closer = closer
	s.patterns = append([]string(nil), opts.Patterns...)
	s.open = true
	return nil
}

// Log writes one event. A leading severity tag after the subject selects the
// level; objects go under "data" and errors under "error".
func (s *Sink) Log(items ...any) error {
	subject, rest := logging.SplitPayload(items)
	primary, secondary := logging.PlainSubject(subject)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	if primary != "" && !logging.MatchSubject(s.patterns, primary) {
		return nil
	}

	severity, rest := applog.Parse(rest)
	level, _ := zerolog.ParseLevel(severity.Level())
	event := s.logger.WithLevel(level)
	if event == nil {
		return nil
	}
	event = event.Time(zerolog.TimestampFieldName, s.owner.Now())
	if primary != "" {
		event = event.Str("subject", primary)
	}
	if secondary != "" {
		event = event.Str("objective", secondary)
	}

	var words []string
	var data []any
	var errs []any
	for _, item := range rest {
		switch v := item.(type) {
		case logging.ErrorObject, *logging.ErrorObject:
			errs = append(errs, v)
		default:
			if logging.IsObject(item) {
				data = append(data, logging.PlainValue(item))
			} else {
				words = append(words, logging.StripEscapes(logging.Stringify(item)))
			}
		}
	}
	switch len(data) {
	case 0:
	case 1:
		event = event.Interface("data", data[0])
	default:
		event = event.Interface("data", data)
	}
	switch len(errs) {
	case 0:
	case 1:
		event = event.Interface("error", errs[0])
	default:
		event = event.Interface("error", errs)
	}
	event.Msg(strings.Join(words, " "))
	return nil
}

// LogRaw drops raw terminal output.
func (s *Sink) LogRaw(...any) error { return nil }

// Progress writes a progress event.
func (s *Sink) Progress(evt logging.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	at := evt.At
	if at.IsZero() {
		at = s.owner.Now()
	}
	level := zerolog.InfoLevel
	if evt.Phase == logging.ProgressStalled {
		level = zerolog.WarnLevel
	}
	event := s.logger.WithLevel(level)
	if event == nil {
		return nil
	}
	event = event.Time(zerolog.TimestampFieldName, at).
		Str("phase", string(evt.Phase)).
		Int("current", evt.Current).
		Int("max", evt.Max).
		Float64("percent", evt.Percent).
		Dur("elapsed", evt.Elapsed)
	if evt.Message != "" {
		event = event.Str("subject", evt.Message)
	}
	if evt.Remaining > 0 {
		event = event.Dur("remaining", evt.Remaining)
	}
	if !evt.ETA.IsZero() {
		event = event.Time("eta", evt.ETA)
	}
	event.Msg("progress")
	return nil
}

// Finalize closes a file output.
func (s *Sink) Finalize(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.finalized = true
	s.logger = zerolog.Nop()
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		return fmt.Errorf("close structured output: %w", err)
	}
	return nil
}

func (s *Sink) openOutput() (io.Writer, io.Closer, error) {
	if s.opts.Writer != nil {
		return s.opts.Writer, nil, nil
	}
	switch out := strings.TrimSpace(s.opts.Output); strings.ToLower(out) {
	case "", "stderr":
		return os.Stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	default:
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open structured output: %w", err)
		}
		return f, f, nil
	}
}

func parseLevel(value string) (zerolog.Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("structured level %q: %w", value, err)
	}
	return level, nil
}
