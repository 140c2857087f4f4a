package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"conlog/internal/config"
	"conlog/internal/logging"
	"conlog/internal/sinks"
	"conlog/internal/sinks/memory"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) diagnostics(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if c.verbose != nil && *c.verbose {
		level = "debug"
	}
	return logging.NewDiagnostics(cmd.ErrOrStderr(), level)
}

func (c *commandContext) colour(cmd *cobra.Command) bool {
	cfg, err := c.ensureConfig()
	if err != nil {
		return false
	}
	mode, err := logging.ParseColourMode(cfg.Logging.Colour)
	if err != nil {
		return false
	}
	return logging.ResolveColour(mode, cmd.OutOrStdout())
}

// loggerSession is a Logger initialized from config, plus the memory buffer
// bound to its registry.
type loggerSession struct {
	cfg    *config.Config
	logger *logging.Logger
	memory *memory.Buffer
}

// openLogger builds a Logger writing StandardOut to the command's stdout and
// initializes the configured sinks plus any extra ones.
func (c *commandContext) openLogger(cmd *cobra.Command, extra ...string) (*loggerSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	diag := c.diagnostics(cmd, cfg)

	reg := logging.NewRegistry()
	buf, err := sinks.Register(reg, cfg, diag)
	if err != nil {
		return nil, err
	}
	mode, err := logging.ParseColourMode(cfg.Logging.Colour)
	if err != nil {
		return nil, fmt.Errorf("logging.colour: %w", err)
	}

	logger := logging.New(
		logging.WithName("conlog"),
		logging.WithOutput(cmd.OutOrStdout()),
		logging.WithColour(mode),
		logging.WithRegistry(reg),
		logging.WithDiagnostics(diag),
	)
	logger.SetLoggingEnabled(cfg.Logging.Enabled)
	logger.SetAlwaysLog(cfg.Logging.AlwaysLog)

	names := append(append([]string(nil), cfg.Logging.Sinks...), extra...)
	logger.Initialize(commandCtx(cmd), names, sinks.Options(cfg))
	diag.Debug("logger initialized",
		logging.String("session", logger.SessionID()),
		logging.String("sinks", strings.Join(logger.SinkNames(), ",")),
	)
	return &loggerSession{cfg: cfg, logger: logger, memory: buf}, nil
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
