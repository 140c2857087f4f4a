package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogBridgeRoutesRecords(t *testing.T) {
	rec := &recordingSink{}
	logger, _ := newTestLogger(t, map[string]Sink{"Rec": rec})
	logger.Initialize(context.Background(), []string{"Rec"}, SinkOptions{})

	sl := slog.New(NewSlogHandler(logger, slog.LevelInfo)).With("component", "fetcher")
	sl.Debug("hidden")
	sl.Info("page fetched", "url", "http://x", "bytes", 12)
	sl.Error("fetch failed", "error", errors.New("timeout"))

	if len(rec.logs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(rec.logs))
	}
	first := rec.logs[0]
	if first[0] != "fetcher:" || first[1] != "page fetched" || first[2] != "url=http://x bytes=12" {
		t.Fatalf("first record = %#v", first)
	}
	second := rec.logs[1]
	if second[0] != "> fetcher:" {
		t.Fatalf("repeat component should be de-emphasized, got %q", second[0])
	}
	if obj, ok := second[2].(ErrorObject); !ok || obj.Message != "timeout" {
		t.Fatalf("error attr should arrive as ErrorObject, got %#v", second[2])
	}
}

func TestSlogBridgeLevelSubjectAndGroups(t *testing.T) {
	rec := &recordingSink{}
	logger, _ := newTestLogger(t, map[string]Sink{"Rec": rec})
	logger.Initialize(context.Background(), []string{"Rec"}, SinkOptions{})

	sl := slog.New(NewSlogHandler(logger, nil)).WithGroup("req")
	sl.Warn("slow", "ms", 900)
	got := rec.lastLog()
	if got[0] != "Warn:" || got[2] != "req.ms=900" {
		t.Fatalf("record = %#v", got)
	}

	logger.SetLoggingEnabled(false)
	if sl.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("bridge should be disabled when the logger is")
	}
}

func TestNewDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	diag := NewDiagnostics(&buf, "warn")
	diag.Info("dropped")
	diag.Warn("kept", String("sink", "File"))
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "sink=File") {
		t.Fatalf("diagnostics output = %q", out)
	}
	if NewDiagnostics(nil, "debug").Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nil writer should yield a no-op logger")
	}
}
