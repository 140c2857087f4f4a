// Package history journals façade output into a SQLite database so past
// sessions can be listed and replayed with `conlog history`.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"conlog/internal/logging"
)

// Name is the registry name of the history sink.
const Name = "History"

// Options configures the history sink.
type Options struct {
	Path          string
	BucketPercent float64
}

// Sink records log calls and sampled progress transitions. Raw terminal
// output is not recorded.
type Sink struct {
	opts  Options
	owner logging.Owner
	diag  *slog.Logger

	mu       sync.Mutex
	store    *Store
	sampler  *logging.ProgressSampler
	patterns  []string
	session   string
	finalized bool
}

// Factory returns a registry factory for opts.
func Factory(opts Options) logging.Factory {
	return func(owner logging.Owner) (logging.Sink, error) {
		return New(opts, owner)
	}
}

// New constructs a history sink. The database is opened by Initialize.
func New(opts Options, owner logging.Owner) (*Sink, error) {
	if opts.Path == "" {
		return nil, errors.New("history sink: path is required")
	}
	diag := owner.Diagnostics
	if diag == nil {
		diag = logging.NewNop()
	}
	return &Sink{opts: opts, owner: owner, diag: diag.With(logging.String("sink", Name))}, nil
}

// Enabled reports whether the sink still accepts setup and writes. It turns
// false once Finalize runs; calls before Initialize are dropped.
func (s *Sink) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finalized
}

// Open reports whether Initialize opened the store.
func (s *Sink) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store != nil
}

// SessionID returns the session being recorded, or "" before Initialize.
func (s *Sink) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Initialize opens the store and begins a session named after the logger's
// session ID.
func (s *Sink) Initialize(ctx context.Context, opts logging.SinkOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		return nil
	}
	if s.finalized {
		return errors.New("history sink: already finalized")
	}
	store, err := Open(ctx, s.opts.Path)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	session := Session{
		ID:        s.owner.SessionID,
		Logger:    s.owner.LoggerName,
		Context:   opts.Context,
		StartedAt: s.owner.Now(),
	}
	if err := store.BeginSession(ctx, session); err != nil {
		_ = store.Close()
		return fmt.Errorf("begin history session: %w", err)
	}
	s.store = store
	s.session = session.ID
	s.sampler = logging.NewProgressSampler(s.opts.BucketPercent)
	s.patterns = append([]string(nil), opts.Patterns...)
	s.diag.Debug("history session started", logging.String("session", session.ID))
	return nil
}

// Log records the subject and the flattened message.
func (s *Sink) Log(items ...any) error {
	subject, rest := logging.SplitPayload(items)
	primary, secondary := logging.PlainSubject(subject)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	if primary != "" && !logging.MatchSubject(s.patterns, primary) {
		return nil
	}
	if secondary != "" {
		primary += logging.SubjectSeparator + secondary
	}
	return s.store.Append(context.Background(), Entry{
		SessionID: s.session,
		Timestamp: s.owner.Now(),
		Kind:      KindLog,
		Subject:   primary,
		Message:   logging.StripEscapes(logging.JoinItems(rest)),
	})
}

// LogRaw drops raw terminal output; redraws are not part of the journal.
func (s *Sink) LogRaw(...any) error { return nil }

// Progress records progress transitions the sampler lets through.
func (s *Sink) Progress(evt logging.ProgressEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil || !s.sampler.ShouldRecord(evt) {
		return nil
	}
	percent := evt.Percent
	at := evt.At
	if at.IsZero() {
		at = s.owner.Now()
	}
	return s.store.Append(context.Background(), Entry{
		SessionID: s.session,
		Timestamp: at,
		Kind:      KindProgress,
		Subject:   evt.Message,
		Message:   fmt.Sprintf("%s %d/%d", evt.Phase, evt.Current, evt.Max),
		Percent:   &percent,
	})
}

// Finalize ends the session and closes the store.
func (s *Sink) Finalize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true
	if s.store == nil {
		return nil
	}
	err := s.store.EndSession(ctx, s.session, s.owner.Now())
	if cerr := s.store.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close history store: %w", cerr))
	}
	s.store = nil
	return err
}
