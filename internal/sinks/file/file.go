// Package file writes façade output to a plain-text log file.
//
// Lines are prefixed with a local timestamp and stripped of ANSI escapes.
// Raw output is buffered until a newline so in-place progress redraws end up
// as the single line the terminal finally shows.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"conlog/internal/logging"
)

// Name is the registry name of the file sink.
const Name = "File"

// ErrLocked is returned by Initialize when another process holds the log file.
var ErrLocked = errors.New("log file is locked by another process")

// Options configures the file sink.
type Options struct {
	Path           string
	RetentionDays  int
	FollowRotation bool
}

// Sink appends log lines to Options.Path. Lines are written only between a
// successful Initialize and Finalize.
type Sink struct {
	opts  Options
	owner logging.Owner
	diag  *slog.Logger

	mu       sync.Mutex
	file     *os.File
	lock     *flock.Flock
	patterns []string
	pending  strings.Builder
	// open is set by Initialize; finalized by Finalize.
	open      bool
	finalized bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// Factory returns a registry factory for opts.
func Factory(opts Options) logging.Factory {
	return func(owner logging.Owner) (logging.Sink, error) {
		return New(opts, owner)
	}
}

// New constructs a file sink. Nothing is opened until Initialize.
func New(opts Options, owner logging.Owner) (*Sink, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("file sink: path is required")
	}
	diag := owner.Diagnostics
	if diag == nil {
		diag = logging.NewNop()
	}
	return &Sink{
		opts:  opts,
		owner: owner,
		diag:  diag.With(logging.String("sink", Name)),
	}, nil
}

// Path returns the log file location.
func (s *Sink) Path() string { return s.opts.Path }

// Enabled reports whether the sink still accepts setup and writes. A
// configured sink is enabled from construction until Finalize; writes before
// Initialize are dropped.
func (s *Sink) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finalized
}

// Open reports whether Initialize opened the log file.
func (s *Sink) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Initialize locks and opens the log file, prunes old siblings, and starts
// watching for rotation when configured.
func (s *Sink) Initialize(_ context.Context, opts logging.SinkOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	if s.finalized {
		return errors.New("file sink: already finalized")
	}

	dir := filepath.Dir(s.opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	lockPath := s.opts.Path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire log lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, s.opts.Path)
	}

	pruneOldLogs(s.diag, s.owner.Now(), s.opts.RetentionDays, retentionTarget{
		Dir:     dir,
		Pattern: retentionPattern(s.opts.Path),
		Exclude: []string{s.opts.Path, lockPath},
	})

	file, err := openLog(s.opts.Path)
	if err != nil {
		_ = lock.Unlock()
		return err
	}

	if s.opts.FollowRotation {
		if err := s.startWatcherLocked(dir); err != nil {
			s.diag.Warn("log rotation watcher unavailable", logging.Error(err))
		}
	}

	s.file = file
	s.lock = lock
	s.patterns = append([]string(nil), opts.Patterns...)
	s.pending.Reset()
	s.open = true

	header := "--- session " + s.owner.SessionID
	if opts.Context != "" {
		header += " (" + opts.Context + ")"
	}
	return s.writeLineLocked(header + " ---")
}

// Log writes one timestamped line. Pending raw text is flushed first.
func (s *Sink) Log(items ...any) error {
	subject := logging.SubjectOf(items)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	if subject != "" && !logging.MatchSubject(s.patterns, subject) {
		return nil
	}
	if err := s.flushPendingLocked(); err != nil {
		return err
	}
	return s.writeLineLocked(logging.StripEscapes(logging.RenderLine(items)))
}

// LogRaw appends to the pending line and writes every completed line.
func (s *Sink) LogRaw(items ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.pending.WriteString(logging.StripEscapes(logging.JoinItems(items)))
	text := s.pending.String()
	if !strings.Contains(text, "\n") {
		return nil
	}
	lines := strings.Split(text, "\n")
	s.pending.Reset()
	s.pending.WriteString(lines[len(lines)-1])
	for _, line := range lines[:len(lines)-1] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := s.writeLineLocked(line); err != nil {
			return err
		}
	}
	return nil
}

// ClearCurrentLine discards the pending raw line.
func (s *Sink) ClearCurrentLine() error {
	s.mu.Lock()
	s.pending.Reset()
	s.mu.Unlock()
	return nil
}

// Finalize flushes pending output, stops the watcher, closes the file and
// releases the lock.
func (s *Sink) Finalize(context.Context) error {
	s.mu.Lock()
	s.finalized = true
	if !s.open {
		s.mu.Unlock()
		return nil
	}
	s.open = false
	watcher, done := s.watcher, s.done
	s.watcher, s.done = nil, nil
	s.mu.Unlock()

	if watcher != nil {
		close(done)
		_ = watcher.Close()
		s.wg.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if err := s.flushPendingLocked(); err != nil {
		errs = append(errs, err)
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
		s.file = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release log lock: %w", err))
		}
		s.lock = nil
	}
	return errors.Join(errs...)
}

func (s *Sink) flushPendingLocked() error {
	if s.pending.Len() == 0 {
		return nil
	}
	line := s.pending.String()
	s.pending.Reset()
	if strings.TrimSpace(line) == "" || s.file == nil {
		return nil
	}
	return s.writeLineLocked(line)
}

func (s *Sink) writeLineLocked(line string) error {
	if s.file == nil {
		return nil
	}
	if _, err := fmt.Fprintf(s.file, "%s %s\n", logging.FormatTimestamp(s.owner.Now()), line); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}

func openLog(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
