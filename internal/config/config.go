package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging controls the façade itself: which sinks are enabled and how the
// console renders.
type Logging struct {
	Enabled   bool     `toml:"enabled"`
	AlwaysLog bool     `toml:"always_log"`
	Sinks     []string `toml:"sinks"`
	Context   string   `toml:"context"`
	Patterns  []string `toml:"patterns"`
	Colour    string   `toml:"colour"`
	Level     string   `toml:"level"` // diagnostics level
}

// File configures the plain-text file sink.
type File struct {
	Path           string `toml:"path"`
	RetentionDays  int    `toml:"retention_days"`
	FollowRotation bool   `toml:"follow_rotation"`
}

// History configures the sqlite journal sink.
type History struct {
	Path          string  `toml:"path"`
	BucketPercent float64 `toml:"bucket_percent"`
}

// Structured configures the JSON lines sink.
type Structured struct {
	Output string `toml:"output"` // stdout, stderr, or a file path
	Level  string `toml:"level"`
}

// Progress configures the progress overlay watchdog.
type Progress struct {
	TickIntervalSeconds float64 `toml:"tick_interval_seconds"`
	StallAfterSeconds   float64 `toml:"stall_after_seconds"`
}

// Config encapsulates all configuration values for conlog.
//
// Configuration sections:
//   - Logging: enabled flags, sink selection, context and subject patterns
//   - File: log file location, retention, rotation handling
//   - History: sqlite journal location and progress sampling
//   - Structured: JSON output target and minimum level
//   - Progress: watchdog tick and stall thresholds
type Config struct {
	Logging    Logging    `toml:"logging"`
	File       File       `toml:"file"`
	History    History    `toml:"history"`
	Structured Structured `toml:"structured"`
	Progress   Progress   `toml:"progress"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("conlog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the parent directories of every file the enabled
// sinks write to.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.SinkEnabled("File") {
		dirs = append(dirs, filepath.Dir(c.File.Path))
	}
	if c.SinkEnabled("History") {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	if c.SinkEnabled("Structured") && !IsStandardStream(c.Structured.Output) {
		dirs = append(dirs, filepath.Dir(c.Structured.Output))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SinkEnabled reports whether name appears in logging.sinks.
func (c *Config) SinkEnabled(name string) bool {
	for _, sink := range c.Logging.Sinks {
		if sink == name {
			return true
		}
	}
	return false
}

// IsStandardStream reports whether output names stdout or stderr rather than
// a file.
func IsStandardStream(output string) bool {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "stdout", "stderr":
		return true
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders c as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	encoder := toml.NewEncoder(&b)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
