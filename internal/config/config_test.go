package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"conlog/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CONLOG_SINKS", "")
	t.Setenv("NO_COLOR", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "conlog", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}

	if want := filepath.Join(home, ".local", "share", "conlog", "logs", "conlog.log"); cfg.File.Path != want {
		t.Fatalf("unexpected file path: got %q want %q", cfg.File.Path, want)
	}
	if want := filepath.Join(home, ".local", "share", "conlog", "history.db"); cfg.History.Path != want {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, want)
	}
	if !cfg.Logging.Enabled {
		t.Fatal("expected logging enabled by default")
	}
	if len(cfg.Logging.Sinks) != 1 || cfg.Logging.Sinks[0] != "StandardOut" {
		t.Fatalf("unexpected default sinks: %v", cfg.Logging.Sinks)
	}
	if cfg.Logging.Colour != "auto" {
		t.Fatalf("unexpected colour: %q", cfg.Logging.Colour)
	}
	if cfg.Structured.Output != "stderr" {
		t.Fatalf("unexpected structured output: %q", cfg.Structured.Output)
	}
	if cfg.History.BucketPercent != 10 {
		t.Fatalf("unexpected bucket percent: %v", cfg.History.BucketPercent)
	}
	if cfg.Progress.TickIntervalSeconds != 5 || cfg.Progress.StallAfterSeconds != 6 {
		t.Fatalf("unexpected progress defaults: %+v", cfg.Progress)
	}
}

func TestLoadProjectConfigFallback(t *testing.T) {
	isolateEnv(t)
	if err := os.WriteFile("conlog.toml", []byte("[logging]\ncontext = \"project\"\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "conlog.toml" {
		t.Fatalf("expected project config to be found, got %q exists=%v", resolved, exists)
	}
	if cfg.Logging.Context != "project" {
		t.Fatalf("expected context from project config, got %q", cfg.Logging.Context)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "conlog.toml")

	type payload struct {
		Logging struct {
			Sinks    []string `toml:"sinks"`
			Patterns []string `toml:"patterns"`
			Colour   string   `toml:"colour"`
		} `toml:"logging"`
		File struct {
			Path          string `toml:"path"`
			RetentionDays int    `toml:"retention_days"`
		} `toml:"file"`
		Structured struct {
			Output string `toml:"output"`
		} `toml:"structured"`
		Progress struct {
			StallAfterSeconds float64 `toml:"stall_after_seconds"`
		} `toml:"progress"`
	}
	custom := payload{}
	custom.Logging.Sinks = []string{" File ", "StandardOut", "File", ""}
	custom.Logging.Patterns = []string{"Sub*", "  "}
	custom.Logging.Colour = "ALWAYS"
	custom.File.Path = "~/logs/app.log"
	custom.File.RetentionDays = 7
	custom.Structured.Output = "STDOUT"
	custom.Progress.StallAfterSeconds = 1.5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if got := strings.Join(cfg.Logging.Sinks, ","); got != "File,StandardOut" {
		t.Fatalf("sinks should be trimmed and deduplicated, got %q", got)
	}
	if len(cfg.Logging.Patterns) != 1 || cfg.Logging.Patterns[0] != "Sub*" {
		t.Fatalf("unexpected patterns: %q", cfg.Logging.Patterns)
	}
	if cfg.Logging.Colour != "always" {
		t.Fatalf("colour should be lower-cased, got %q", cfg.Logging.Colour)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "logs", "app.log"); cfg.File.Path != want {
		t.Fatalf("file path = %q, want %q", cfg.File.Path, want)
	}
	if cfg.File.RetentionDays != 7 {
		t.Fatalf("retention days = %d", cfg.File.RetentionDays)
	}
	if cfg.Structured.Output != "stdout" {
		t.Fatalf("structured output = %q", cfg.Structured.Output)
	}
	if cfg.Progress.StallAfterSeconds != 1.5 || cfg.Progress.TickIntervalSeconds != 5 {
		t.Fatalf("unexpected progress section: %+v", cfg.Progress)
	}
	if !cfg.SinkEnabled("File") || cfg.SinkEnabled("History") {
		t.Fatalf("SinkEnabled mismatch for %v", cfg.Logging.Sinks)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "conlog.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\ncolor = \"never\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("CONLOG_SINKS", "Structured, Memory ,Structured")
	t.Setenv("NO_COLOR", "1")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := strings.Join(cfg.Logging.Sinks, ","); got != "Structured,Memory" {
		t.Errorf("expected sinks from env, got %q", got)
	}
	if cfg.Logging.Colour != "never" {
		t.Errorf("NO_COLOR should force never, got %q", cfg.Logging.Colour)
	}
}

func TestCreateSample(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if !strings.Contains(cfg.History.Path, "conlog") {
		t.Fatalf("expected history path to contain conlog, got %q", cfg.History.Path)
	}
	def := config.Default()
	if cfg.Progress != def.Progress || cfg.History.BucketPercent != def.History.BucketPercent {
		t.Fatalf("sample should match defaults: %+v", cfg)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Context = "round trip"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if decoded.Logging.Context != "round trip" || decoded.Progress != cfg.Progress {
		t.Fatalf("unexpected decoded config: %+v", decoded)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Logging.Sinks = []string{"File", "History"}
	cfg.File.Path = filepath.Join(base, "logs", "conlog.log")
	cfg.History.Path = filepath.Join(base, "db", "history.db")
	cfg.Structured.Output = filepath.Join(base, "json", "out.jsonl")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{"logs", "db"} {
		info, err := os.Stat(filepath.Join(base, dir))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, "json")); !os.IsNotExist(err) {
		t.Fatalf("structured directory should not be created while the sink is disabled: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"colour", func(c *config.Config) { c.Logging.Colour = "sometimes" }},
		{"logging level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"pattern", func(c *config.Config) { c.Logging.Patterns = []string{"[a-"} }},
		{"retention", func(c *config.Config) { c.File.RetentionDays = -1 }},
		{"bucket zero", func(c *config.Config) { c.History.BucketPercent = 0 }},
		{"bucket too large", func(c *config.Config) { c.History.BucketPercent = 150 }},
		{"structured level", func(c *config.Config) { c.Structured.Level = "trace" }},
		{"tick", func(c *config.Config) { c.Progress.TickIntervalSeconds = 0 }},
		{"stall", func(c *config.Config) { c.Progress.StallAfterSeconds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
