package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLogging()
	if err := c.normalizeFile(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeStructured()
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("CONLOG_SINKS"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Sinks = strings.Split(value, ",")
	}
	sinks := make([]string, 0, len(c.Logging.Sinks))
	seen := make(map[string]struct{}, len(c.Logging.Sinks))
	for _, sink := range c.Logging.Sinks {
		name := strings.TrimSpace(sink)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		sinks = append(sinks, name)
	}
	c.Logging.Sinks = sinks

	patterns := c.Logging.Patterns[:0]
	for _, pattern := range c.Logging.Patterns {
		if p := strings.TrimSpace(pattern); p != "" {
			patterns = append(patterns, p)
		}
	}
	c.Logging.Patterns = patterns
	c.Logging.Context = strings.TrimSpace(c.Logging.Context)

	c.Logging.Colour = strings.ToLower(strings.TrimSpace(c.Logging.Colour))
	if c.Logging.Colour == "" {
		c.Logging.Colour = defaultColour
	}
	if value, ok := os.LookupEnv("NO_COLOR"); ok && value != "" {
		c.Logging.Colour = "never"
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeFile() error {
	var err error
	if strings.TrimSpace(c.File.Path) == "" {
		c.File.Path = defaultLogFilePath
	}
	if c.File.Path, err = expandPath(c.File.Path); err != nil {
		return fmt.Errorf("file.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	if c.History.BucketPercent == 0 {
		c.History.BucketPercent = defaultHistoryBucket
	}
	return nil
}

func (c *Config) normalizeStructured() error {
	c.Structured.Level = strings.ToLower(strings.TrimSpace(c.Structured.Level))
	if c.Structured.Level == "" {
		c.Structured.Level = defaultLogLevel
	}
	output := strings.TrimSpace(c.Structured.Output)
	switch {
	case output == "":
		c.Structured.Output = defaultStructuredOutput
	case IsStandardStream(output):
		c.Structured.Output = strings.ToLower(output)
	default:
		expanded, err := expandPath(output)
		if err != nil {
			return fmt.Errorf("structured.output: %w", err)
		}
		c.Structured.Output = expanded
	}
	return nil
}
