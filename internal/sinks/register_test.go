package sinks_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"conlog/internal/logging"
	"conlog/internal/sinks"
	"conlog/internal/sinks/history"
	"conlog/internal/testsupport"
)

func TestRegisterBindsAllSinks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reg := logging.NewRegistry()
	if _, err := sinks.Register(reg, cfg, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	got := strings.Join(reg.Names(), ",")
	if got != "File,History,Memory,StandardOut,Structured" {
		t.Fatalf("registered sinks = %q", got)
	}
}

func TestLoggerWritesThroughConfiguredSinks(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithSinks("File", "History", "Memory"),
		testsupport.WithPatterns("Keep*"),
	)
	reg := logging.NewRegistry()
	buf, err := sinks.Register(reg, cfg, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var console strings.Builder
	logger := logging.New(logging.WithRegistry(reg), logging.WithOutput(&console), logging.WithColour(logging.ColourNever))
	ctx := context.Background()
	logger.Initialize(ctx, cfg.Logging.Sinks, sinks.Options(cfg))
	if got := strings.Join(logger.SinkNames(), ","); got != "File,History,Memory" {
		t.Fatalf("active sinks = %q", got)
	}

	logger.Log("Keeper", "first")
	logger.Log("Dropped", "second")
	logger.Finalize(ctx)

	if console.Len() != 0 {
		t.Fatalf("no sink failures expected, console got %q", console.String())
	}
	data, err := os.ReadFile(cfg.File.Path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "Keeper: first") || strings.Contains(string(data), "second") {
		t.Fatalf("unexpected log file: %s", data)
	}

	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()
	entries, err := store.Entries(ctx, logger.SessionID(), 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Subject != "Keeper" {
		t.Fatalf("history entries = %+v", entries)
	}

	// Memory records everything; patterns only apply to persistent sinks.
	if lines := buf.Lines(); len(lines) != 2 {
		t.Fatalf("memory lines = %q", lines)
	}
}
