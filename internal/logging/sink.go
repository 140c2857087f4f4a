package logging

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Sink is a log destination. Log receives already-normalized items: errors
// arrive as ErrorObject values and the subject, when present, is the first
// item.
type Sink interface {
	Log(items ...any) error
}

// Enabler lets a sink opt out of dispatch, Initialize included. Enabled must
// hold from construction for a sink that wants Initialize called; open state
// belongs inside the sink. Sinks without it are enabled.
type Enabler interface {
	Enabled() bool
}

// RawSink writes freeform text without subject handling or line breaks.
// Sinks without it receive raw output through Log.
type RawSink interface {
	LogRaw(items ...any) error
}

// LineClearer erases the line currently being drawn.
type LineClearer interface {
	ClearCurrentLine() error
}

// Initializer is called once per Initialize for enabled sinks.
type Initializer interface {
	Initialize(ctx context.Context, opts SinkOptions) error
}

// Finalizer releases sink resources. It is the only teardown hook.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// ProgressSink receives structured progress transitions alongside the raw
// redraw text.
type ProgressSink interface {
	Progress(evt ProgressEvent) error
}

// SinkOptions are passed to every sink during Initialize.
type SinkOptions struct {
	// Context labels the logging session (for example a job name).
	Context string
	// Patterns restricts sinks that honour it to matching subjects.
	Patterns []string
}

// Owner describes the Logger a sink is created for.
type Owner struct {
	LoggerName  string
	SessionID   string
	Output      io.Writer
	Colour      bool
	Clock       func() time.Time
	Diagnostics *slog.Logger
	// Width reports the terminal width; nil means detect from Output.
	Width func() int
}

// Now returns the owner's clock reading.
func (o Owner) Now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock()
}

// Factory builds a sink for an owner.
type Factory func(owner Owner) (Sink, error)

// ProgressPhase identifies a progress transition.
type ProgressPhase string

const (
	ProgressStarted   ProgressPhase = "started"
	ProgressAdvanced  ProgressPhase = "advanced"
	ProgressStalled   ProgressPhase = "stalled"
	ProgressCompleted ProgressPhase = "completed"
)

// ProgressEvent is the structured form of a progress redraw.
type ProgressEvent struct {
	Phase     ProgressPhase `json:"phase"`
	Message   string        `json:"message,omitempty"`
	Current   int           `json:"current"`
	Max       int           `json:"max"`
	Percent   float64       `json:"percent"`
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining"`
	ETA       time.Time     `json:"eta,omitzero"`
	At        time.Time     `json:"at"`
}

func sinkEnabled(s Sink) bool {
	if e, ok := s.(Enabler); ok {
		return e.Enabled()
	}
	return true
}
