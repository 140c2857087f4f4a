package config

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"conlog/internal/logging"
)

var validLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateFile(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateStructured(); err != nil {
		return err
	}
	return c.validateProgress()
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseColourMode(c.Logging.Colour); err != nil {
		return fmt.Errorf("logging.colour: %w", err)
	}
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported level %q", c.Logging.Level)
	}
	for i, pattern := range c.Logging.Patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("logging.patterns[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func (c *Config) validateFile() error {
	if c.File.RetentionDays < 0 {
		return errors.New("file.retention_days must not be negative")
	}
	if strings.TrimSpace(c.File.Path) == "" {
		return errors.New("file.path must be set")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.BucketPercent <= 0 || c.History.BucketPercent > 100 {
		return errors.New("history.bucket_percent must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateStructured() error {
	if _, ok := validLevels[c.Structured.Level]; !ok {
		return fmt.Errorf("structured.level: unsupported level %q", c.Structured.Level)
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.TickIntervalSeconds <= 0 {
		return errors.New("progress.tick_interval_seconds must be positive")
	}
	if c.Progress.StallAfterSeconds <= 0 {
		return errors.New("progress.stall_after_seconds must be positive")
	}
	return nil
}
