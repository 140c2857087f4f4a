// Package memory provides an in-process ring buffer sink. Entries can be
// tailed or fetched incrementally, optionally blocking until new output
// arrives.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"conlog/internal/logging"
)

// Name is the registry name of the memory sink.
const Name = "Memory"

// Kind classifies a buffered entry.
type Kind string

const (
	KindLog      Kind = "log"
	KindRaw      Kind = "raw"
	KindClear    Kind = "clear"
	KindProgress Kind = "progress"
)

// Entry is one buffered sink call.
type Entry struct {
	Sequence  uint64                 `json:"seq"`
	Timestamp time.Time              `json:"ts"`
	Kind      Kind                   `json:"kind"`
	Subject   string                 `json:"subject,omitempty"`
	Text      string                 `json:"text,omitempty"`
	Items     []any                  `json:"-"`
	Progress  *logging.ProgressEvent `json:"progress,omitempty"`
}

// Buffer stores recent entries and wakes waiters when new ones arrive.
type Buffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Entry
	nextSeq  uint64
	clock    func() time.Time
}

// New constructs a bounded buffer; capacity defaults to 512.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 512
	}
	b := &Buffer{capacity: capacity, clock: time.Now}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Factory returns a registry factory that always hands out b, so the caller
// keeps access to what the logger wrote.
func (b *Buffer) Factory() logging.Factory {
	return func(owner logging.Owner) (logging.Sink, error) {
		if owner.Clock != nil {
			b.mu.Lock()
			b.clock = owner.Clock
			b.mu.Unlock()
		}
		return b, nil
	}
}

// Log buffers a rendered log call.
func (b *Buffer) Log(items ...any) error {
	subject, rest := logging.SplitPayload(items)
	b.publish(Entry{Kind: KindLog, Subject: subject, Text: logging.JoinItems(rest), Items: items})
	return nil
}

// LogRaw buffers raw output verbatim.
func (b *Buffer) LogRaw(items ...any) error {
	b.publish(Entry{Kind: KindRaw, Text: logging.JoinItems(items), Items: items})
	return nil
}

// ClearCurrentLine records the clear request.
func (b *Buffer) ClearCurrentLine() error {
	b.publish(Entry{Kind: KindClear})
	return nil
}

// Progress buffers a progress transition.
func (b *Buffer) Progress(evt logging.ProgressEvent) error {
	b.publish(Entry{
		Kind:     KindProgress,
		Text:     fmt.Sprintf("%s %d/%d", evt.Phase, evt.Current, evt.Max),
		Progress: &evt,
	})
	return nil
}

func (b *Buffer) publish(evt Entry) {
	b.mu.Lock()
	b.nextSeq++
	evt.Sequence = b.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = b.clock()
	}
	if len(b.buffer) == b.capacity {
		copy(b.buffer, b.buffer[1:])
		b.buffer = b.buffer[:b.capacity-1]
	}
	b.buffer = append(b.buffer, evt)
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Fetch returns entries with a sequence greater than since. When wait is true
// it blocks until at least one entry is available or ctx ends.
func (b *Buffer) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Entry, uint64, error) {
	if limit <= 0 || limit > b.capacity {
		limit = b.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.mu.Lock()
				b.cond.Broadcast()
				b.mu.Unlock()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		entries, next := b.snapshotLocked(since, limit)
		if len(entries) > 0 || !wait {
			return entries, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		b.cond.Wait()
	}
}

// Tail returns the most recent limit entries; limit <= 0 returns everything
// buffered.
func (b *Buffer) Tail(limit int) ([]Entry, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if limit <= 0 || limit > len(b.buffer) {
		limit = len(b.buffer)
	}
	out := make([]Entry, limit)
	copy(out, b.buffer[len(b.buffer)-limit:])
	return out, b.nextSeq
}

// Lines returns the text of buffered log entries, prefixed by their subject.
func (b *Buffer) Lines() []string {
	entries, _ := b.Tail(0)
	var lines []string
	for _, e := range entries {
		if e.Kind != KindLog {
			continue
		}
		line := e.Text
		if e.Subject != "" {
			line = e.Subject + " " + line
		}
		lines = append(lines, line)
	}
	return lines
}

// Len reports the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}

func (b *Buffer) snapshotLocked(since uint64, limit int) ([]Entry, uint64) {
	start := len(b.buffer)
	for i, evt := range b.buffer {
		if evt.Sequence > since {
			start = i
			break
		}
	}
	end := min(start+limit, len(b.buffer))
	out := make([]Entry, end-start)
	copy(out, b.buffer[start:end])
	return out, b.nextSeq
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
