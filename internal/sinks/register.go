// Package sinks binds the bundled sink implementations to a logging.Registry.
package sinks

import (
	"fmt"
	"log/slog"

	"conlog/internal/config"
	"conlog/internal/logging"
	"conlog/internal/sinks/file"
	"conlog/internal/sinks/history"
	"conlog/internal/sinks/memory"
	"conlog/internal/sinks/structured"
)

// Register adds the File, History, Structured and Memory factories to reg
// using cfg. The memory buffer is returned so callers can read it back.
func Register(reg *logging.Registry, cfg *config.Config, diag *slog.Logger) (*memory.Buffer, error) {
	if diag == nil {
		diag = logging.NewNop()
	}
	buf := memory.New(0)
	factories := []struct {
		name    string
		factory logging.Factory
	}{
		{file.Name, file.Factory(file.Options{
			Path:           cfg.File.Path,
			RetentionDays:  cfg.File.RetentionDays,
			FollowRotation: cfg.File.FollowRotation,
		})},
		{history.Name, history.Factory(history.Options{
			Path:          cfg.History.Path,
			BucketPercent: cfg.History.BucketPercent,
		})},
		{structured.Name, structured.Factory(structured.Options{
			Output: cfg.Structured.Output,
			Level:  cfg.Structured.Level,
		})},
		{memory.Name, buf.Factory()},
	}
	for _, f := range factories {
		if err := reg.Register(f.name, f.factory); err != nil {
			return nil, fmt.Errorf("register %s sink: %w", f.name, err)
		}
		diag.Debug("sink registered", logging.String("sink", f.name))
	}
	return buf, nil
}

// Options converts the [logging] section into the options every sink
// receives at initialization.
func Options(cfg *config.Config) logging.SinkOptions {
	return logging.SinkOptions{
		Context:  cfg.Logging.Context,
		Patterns: append([]string(nil), cfg.Logging.Patterns...),
	}
}
