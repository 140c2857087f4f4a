package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"conlog/internal/logging"
	"conlog/internal/sinks/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse sessions recorded by the History sink",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

type sessionView struct {
	ID        string `json:"id"`
	Logger    string `json:"logger,omitempty"`
	Context   string `json:"context,omitempty"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	Entries   int    `json:"entries"`
}

type entryView struct {
	Timestamp string   `json:"ts"`
	Kind      string   `json:"kind"`
	Subject   string   `json:"subject,omitempty"`
	Message   string   `json:"message"`
	Percent   *float64 `json:"percent,omitempty"`
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.Sessions(commandCtx(cmd), limit)
			if err != nil {
				return err
			}
			views := make([]sessionView, 0, len(sessions))
			for _, s := range sessions {
				views = append(views, sessionView{
					ID:        s.ID,
					Logger:    s.Logger,
					Context:   s.Context,
					StartedAt: logging.FormatTimestamp(s.StartedAt),
					EndedAt:   logging.FormatTimestamp(s.EndedAt),
					Entries:   s.Entries,
				})
			}
			if asJSON {
				return writeJSON(cmd, views)
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				ended := v.EndedAt
				if ended == "" {
					ended = "open"
				}
				rows = append(rows, []string{v.ID, v.Logger, v.Context, v.StartedAt, ended, strconv.Itoa(v.Entries)})
			}
			writeTable(cmd, tableView{
				columns: []column{
					{header: "Session"},
					{header: "Logger"},
					{header: "Context", width: 24},
					{header: "Started"},
					{header: "Ended"},
					{header: "Entries", right: true},
				},
				rows:       rows,
				countLabel: "sessions",
			}, ctx.colour(cmd))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sessions to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the entries recorded for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			id := strings.TrimSpace(args[0])
			entries, err := store.Entries(commandCtx(cmd), id, limit)
			if errors.Is(err, history.ErrSessionNotFound) {
				return fmt.Errorf("session %s not found", id)
			}
			if err != nil {
				return err
			}
			views := make([]entryView, 0, len(entries))
			for _, e := range entries {
				views = append(views, entryView{
					Timestamp: logging.FormatTimestamp(e.Timestamp),
					Kind:      e.Kind,
					Subject:   e.Subject,
					Message:   e.Message,
					Percent:   e.Percent,
				})
			}
			if asJSON {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			for _, v := range views {
				line := v.Timestamp
				if v.Subject != "" {
					line += " " + v.Subject
				}
				fmt.Fprintf(out, "%s %s\n", line, v.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last N entries (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func openHistory(cmd *cobra.Command, ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(commandCtx(cmd), cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}
