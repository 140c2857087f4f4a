package main

import (
	"slices"

	"github.com/spf13/cobra"

	"conlog/internal/logging"
	"conlog/internal/sinks"
)

func newSinksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sinks",
		Short: "List registered sinks and whether config enables them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg := logging.NewRegistry()
			if _, err := sinks.Register(reg, cfg, ctx.diagnostics(cmd, cfg)); err != nil {
				return err
			}
			rows := make([][]string, 0)
			for _, name := range reg.Names() {
				enabled := "no"
				if slices.Contains(cfg.Logging.Sinks, name) {
					enabled = "yes"
				}
				rows = append(rows, []string{name, enabled})
			}
			writeTable(cmd, tableView{
				columns: []column{{header: "Sink"}, {header: "Enabled"}},
				rows:    rows,
			}, ctx.colour(cmd))
			return nil
		},
	}
}
