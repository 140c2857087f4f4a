package memory

import (
	"context"
	"testing"
	"time"

	"conlog/internal/logging"
)

func TestBufferRecordsLoggerOutput(t *testing.T) {
	buf := New(16)
	reg := logging.NewRegistry()
	if err := reg.Register(Name, buf.Factory()); err != nil {
		t.Fatalf("register: %v", err)
	}
	logger := logging.New(logging.WithRegistry(reg), logging.WithColour(logging.ColourNever))
	logger.Initialize(context.Background(), []string{Name}, logging.SinkOptions{})

	logger.Log("Subject 1", "log input")
	logger.Log("Subject 1", "more")
	logger.LogRaw("::: [ 0 / 3 ] :::")
	logger.ClearCurrentLine()
	logger.ReportProgress(logging.ProgressEvent{Phase: logging.ProgressAdvanced, Current: 1, Max: 3})

	entries, next := buf.Tail(0)
	if next != 5 || len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d (next=%d)", len(entries), next)
	}
	wantKinds := []Kind{KindLog, KindLog, KindRaw, KindClear, KindProgress}
	for i, want := range wantKinds {
		if entries[i].Kind != want {
			t.Errorf("entry %d kind = %s, want %s", i, entries[i].Kind, want)
		}
	}
	if entries[0].Subject != "Subject 1:" || entries[1].Subject != "> Subject 1:" {
		t.Errorf("subjects = %q, %q", entries[0].Subject, entries[1].Subject)
	}
	if entries[2].Text != "::: [ 0 / 3 ] :::" {
		t.Errorf("raw text = %q", entries[2].Text)
	}
	if entries[4].Progress == nil || entries[4].Progress.Current != 1 {
		t.Errorf("progress entry = %#v", entries[4])
	}

	lines := buf.Lines()
	if len(lines) != 2 || lines[0] != "Subject 1: log input" {
		t.Errorf("Lines = %q", lines)
	}
}

func TestBufferCapacityDropsOldest(t *testing.T) {
	buf := New(2)
	for _, text := range []string{"a", "b", "c"} {
		_ = buf.LogRaw(text)
	}
	entries, _ := buf.Tail(0)
	if len(entries) != 2 || entries[0].Text != "b" || entries[1].Text != "c" {
		t.Fatalf("entries = %#v", entries)
	}
	if entries[0].Sequence != 2 {
		t.Fatalf("sequence = %d, want 2", entries[0].Sequence)
	}
}

func TestBufferFetchSince(t *testing.T) {
	buf := New(8)
	_ = buf.LogRaw("one")
	_ = buf.LogRaw("two")

	entries, next, err := buf.Fetch(context.Background(), 1, 0, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "two" || next != 2 {
		t.Fatalf("entries=%#v next=%d", entries, next)
	}

	entries, _, _ = buf.Fetch(context.Background(), 2, 0, false)
	if len(entries) != 0 {
		t.Fatalf("expected nothing new, got %#v", entries)
	}
}

func TestBufferFetchWaits(t *testing.T) {
	buf := New(8)
	done := make(chan []Entry, 1)
	go func() {
		entries, _, _ := buf.Fetch(context.Background(), 0, 0, true)
		done <- entries
	}()

	time.Sleep(20 * time.Millisecond)
	_ = buf.LogRaw("late")

	select {
	case entries := <-done:
		if len(entries) != 1 || entries[0].Text != "late" {
			t.Fatalf("entries = %#v", entries)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not wake up")
	}
}

func TestBufferFetchHonoursCancel(t *testing.T) {
	buf := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, _, err := buf.Fetch(ctx, 0, 0, true)
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch ignored cancellation")
	}
}
