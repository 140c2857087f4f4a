package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"conlog/internal/logging"
	"conlog/internal/progress"
	"conlog/internal/sinks/memory"
)

type demoScenario struct {
	name string
	run  func(context.Context, *demoRun) error
}

// demoRun carries what a scenario needs. unit scales every delay.
type demoRun struct {
	progress *progress.Progress
	unit     time.Duration
}

var demoScenarios = []demoScenario{
	{"subjects", demoSubjects},
	{"more", demoMore},
	{"exception", demoException},
	{"debug", demoDebug},
	{"progress", demoProgress},
}

func newDemoCommand(ctx *commandContext) *cobra.Command {
	var fast bool
	var summary bool

	cmd := &cobra.Command{
		Use:   "demo [scenario...]",
		Short: "Run the logging demo scenarios",
		Long: "Run the logging demo scenarios in order: " + strings.Join(demoScenarioNames(), ", ") + ".\n" +
			"Each scenario creates a fresh logger and prints OK when it finishes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := selectScenarios(args)
			if err != nil {
				return err
			}

			var extra []string
			if summary {
				extra = append(extra, memory.Name)
			}

			unit := time.Millisecond
			opts := []progress.Option{}
			if fast {
				unit = 10 * time.Microsecond
				opts = append(opts,
					progress.WithTickInterval(5*time.Millisecond),
					progress.WithStallAfter(60*time.Millisecond),
				)
			}

			var captured []memoryCapture
			for _, scenario := range selected {
				session, err := ctx.openLogger(cmd, extra...)
				if err != nil {
					return err
				}
				if summary {
					captured = append(captured, memoryCapture{scenario: scenario.name, buf: session.memory})
				}
				scenarioOpts := append([]progress.Option{progress.FromConfig(session.cfg.Progress)}, opts...)
				run := &demoRun{
					progress: progress.New(session.logger, scenarioOpts...),
					unit:     unit,
				}
				err = scenario.run(commandCtx(cmd), run)
				run.progress.Finalize(context.WithoutCancel(commandCtx(cmd)))
				if err != nil {
					return fmt.Errorf("demo %s: %w", scenario.name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), logging.Colourize("OK", session.logger.Colour(), text.FgGreen))
			}

			if summary {
				writeTable(cmd, memorySummary(captured), ctx.colour(cmd))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fast, "fast", false, "Shrink every delay so the demo finishes in well under a second")
	cmd.Flags().BoolVar(&summary, "summary", false, "Also record to the Memory sink and print what it captured")
	return cmd
}

func demoScenarioNames() []string {
	names := make([]string, len(demoScenarios))
	for i, s := range demoScenarios {
		names[i] = s.name
	}
	return names
}

func selectScenarios(args []string) ([]demoScenario, error) {
	if len(args) == 0 {
		return demoScenarios, nil
	}
	out := make([]demoScenario, 0, len(args))
	for _, arg := range args {
		name := strings.ToLower(strings.TrimSpace(arg))
		idx := slices.IndexFunc(demoScenarios, func(s demoScenario) bool { return s.name == name })
		if idx < 0 {
			return nil, fmt.Errorf("unknown scenario %q (choose from %s)", arg, strings.Join(demoScenarioNames(), ", "))
		}
		out = append(out, demoScenarios[idx])
	}
	return out, nil
}

func demoSubjects(_ context.Context, r *demoRun) error {
	p := r.progress
	p.Log("just some text")
	p.Log(map[string]string{"content": "just some data"})

	p.Log("Subject 1", "log input")
	p.Log("Subject 1", map[string]string{"content": "data"})
	p.Log("Subject 2", "more log input")
	p.Log("Subject 2::subtext", "even more log input")
	p.Log("Subject 1", "back to subject 1")

	p.Log(logging.NewErrorObject(errors.New("test exception")))
	return nil
}

func demoMore(_ context.Context, r *demoRun) error {
	p := r.progress
	const message = "Example log output"
	p.Log(p.ColourPrettyArrow("Logging test"))

	p.Log("Logger subject", message+" 1.1")
	p.Log("Logger subject", message+" 1.2")
	p.Log("Logger subject", message+" 1.3")
	p.Log("Different subject", message+" 2.1")
	p.Log("Different subject", message+" 2.2")
	p.Log("Logger subject", message+" 1.4")
	p.Log("Logger subject::sub-subject:", message+" 1.4.1")
	p.Log("Different subject", message+" 2.3")
	p.Log("Logger subject::sub-subject:", message+" 1.4.2")
	p.Log("Logger subject", message+" 1.5")
	return nil
}

func demoException(_ context.Context, r *demoRun) error {
	p := r.progress
	p.Log(p.ColourPrettyArrow("Test exception"))
	err := fmt.Errorf("run scenario: %w", errors.New("tests an exception in logging"))
	p.Log(logging.NewErrorObject(err))
	return nil
}

func demoDebug(ctx context.Context, r *demoRun) error {
	p := r.progress
	const message = "Example log debug heading"
	p.Log(p.ColourPrettyArrow("Debug timing test"))

	p.DebugStart("Start data", message)
	if err := sleepCtx(ctx, 2500*r.unit); err != nil {
		return err
	}
	p.DebugStop("Stop data", "stop: "+message)
	return nil
}

func demoProgress(ctx context.Context, r *demoRun) error {
	p := r.progress
	p.Log(p.ColourPrettyArrow("Running an example progress bar"))

	total := 10
	if err := p.Start(total, "Logging progress.."); err != nil {
		return err
	}
	for total > 0 {
		total--
		if err := p.Step(); err != nil {
			return err
		}
		if total == 0 {
			break
		}
		delay := 1000 * r.unit
		if total == 7 {
			delay = 12000 * r.unit
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type memoryCapture struct {
	scenario string
	buf      *memory.Buffer
}

func memorySummary(captured []memoryCapture) tableView {
	var rows [][]string
	for _, c := range captured {
		entries, _ := c.buf.Tail(0)
		for _, e := range entries {
			rows = append(rows, []string{
				c.scenario,
				strconv.FormatUint(e.Sequence, 10),
				string(e.Kind),
				e.Subject,
				strings.TrimSpace(logging.StripEscapes(e.Text)),
			})
		}
	}
	return tableView{
		title: "Memory sink",
		columns: []column{
			{header: "Scenario"},
			{header: "Seq", right: true},
			{header: "Kind"},
			{header: "Subject", width: 32},
			{header: "Detail", width: 72},
		},
		rows:       rows,
		countLabel: "entries",
	}
}
