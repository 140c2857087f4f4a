package testsupport

import (
	"path/filepath"
	"testing"

	"conlog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose sink files live in a unique temp
// directory per test. Colour is disabled so output can be compared verbatim.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Colour = "never"
	cfgVal.File.Path = filepath.Join(base, "logs", "conlog.log")
	cfgVal.History.Path = filepath.Join(base, "history.db")
	cfgVal.Structured.Output = "stdout"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSinks replaces the enabled sink list.
func WithSinks(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Sinks = append([]string(nil), names...)
	}
}

// WithPatterns sets the subject patterns handed to sinks.
func WithPatterns(patterns ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Patterns = append([]string(nil), patterns...)
	}
}

// WithStructuredFile points the structured sink at a file under the temp
// directory.
func WithStructuredFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Structured.Output = filepath.Join(b.baseDir, name)
	}
}

// WithFastProgress shortens the progress watchdog so stall tests finish
// quickly.
func WithFastProgress() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Progress.TickIntervalSeconds = 0.001
		b.cfg.Progress.StallAfterSeconds = 0.01
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.History.Path)
}
