package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"gaffer/internal/api"
	"gaffer/internal/store"
	"gaffer/internal/textutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and run status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				for _, line := range renderSectionHeader("Gaffer Status", colorize) {
					fmt.Fprintln(out, line)
				}

				if client == nil {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running; reading database directly", colorize))
					stats, err := st.RunStats(cmd.Context())
					if err != nil {
						return err
					}
					printRunStats(cmd, api.MergeRunStats(stats))
					return nil
				}

				status, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
				workerKind := statusOK
				workerMsg := "processing"
				if !status.Worker.Running {
					workerKind = statusWarn
					workerMsg = "stopped"
				}
				fmt.Fprintln(out, renderStatusLine("Worker", workerKind, workerMsg, colorize))
				if status.Worker.LastError != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusError, status.Worker.LastError, colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.DBPath, colorize))

				printRunStats(cmd, status.Worker.RunStats)
				return nil
			})
		},
	}
}

func printRunStats(cmd *cobra.Command, stats map[string]int) {
	if len(stats) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{textutil.DisplayName(key), strconv.Itoa(stats[key])})
	}
	table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprintln(cmd.OutOrStdout(), table)
}
