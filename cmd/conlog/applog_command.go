package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"conlog/internal/applog"
)

func newAppLogCommand(ctx *commandContext) *cobra.Command {
	var timeKey string

	cmd := &cobra.Command{
		Use:   "applog <app> [severity] <message...>",
		Short: "Print one application message with a severity heading",
		Long: "Print one application message with a severity heading.\n\n" +
			"A leading severity tag (emergency, alert, critical, error, warning,\n" +
			"notice, info, debug, success) selects the heading; untagged messages\n" +
			"are printed as Info.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colour := ctx.colour(cmd)

			var timer *applog.Timer
			if key := strings.TrimSpace(timeKey); key != "" {
				timer = applog.NewTimer(out, nil)
				timer.Start(key)
			}

			items := make([]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				items = append(items, arg)
			}
			if err := applog.Write(out, colour, args[0], items...); err != nil {
				return err
			}

			if timer != nil {
				if _, err := timer.Stop(strings.TrimSpace(timeKey)); err != nil {
					return fmt.Errorf("write timing: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&timeKey, "time", "", "Report how long writing the message took under this label")
	return cmd
}
