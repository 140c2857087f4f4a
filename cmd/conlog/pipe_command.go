package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"conlog/internal/progress"
)

func newPipeCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var units int
	var message string

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Log each stdin line under a subject",
		Long: "Log each line read from stdin under --subject through the configured sinks.\n" +
			"With --progress N a progress line is drawn and advanced once per input line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject = strings.TrimSpace(subject)
			if subject == "" {
				return errors.New("--subject is required")
			}
			if units < 0 {
				return fmt.Errorf("--progress must not be negative, got %d", units)
			}

			session, err := ctx.openLogger(cmd)
			if err != nil {
				return err
			}
			p := progress.New(session.logger, progress.FromConfig(session.cfg.Progress))
			defer p.Finalize(context.WithoutCancel(commandCtx(cmd)))

			if units > 0 {
				if err := p.Start(units, message); err != nil {
					return err
				}
			}
			if err := pipeLines(cmd.InOrStdin(), p, subject); err != nil {
				return err
			}
			if p.Active() {
				if err := p.Stop(); err != nil && !errors.Is(err, progress.ErrNoActiveProgress) {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject every line is logged under")
	cmd.Flags().IntVar(&units, "progress", 0, "Draw a progress line expecting this many input lines")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Heading printed above the progress line")
	return cmd
}

func pipeLines(r io.Reader, p *progress.Progress, subject string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		active := p.Active()
		if active {
			p.ClearCurrentLine()
		}
		p.Log(subject, line)
		if active {
			if err := p.Step(); err != nil && !errors.Is(err, progress.ErrNoActiveProgress) {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
