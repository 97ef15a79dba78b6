package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gaffer/internal/api"
	"gaffer/internal/store"
	"gaffer/internal/textutil"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Queue and inspect graph runs",
	}

	runCmd.AddCommand(newRunQueueCommand(ctx))
	runCmd.AddCommand(newRunListCommand(ctx))
	runCmd.AddCommand(newRunShowCommand(ctx))
	runCmd.AddCommand(newRunRetryCommand(ctx))

	return runCmd
}

func newRunQueueCommand(ctx *commandContext) *cobra.Command {
	var graphID string
	var nodeID string
	var userID string
	var projectID string

	cmd := &cobra.Command{
		Use:   "queue <graph.json>",
		Short: "Queue a run of a graph targeting one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read graph file: %w", err)
			}
			req := api.QueueRunRequest{
				GraphID:   strings.TrimSpace(graphID),
				NodeID:    strings.TrimSpace(nodeID),
				UserID:    strings.TrimSpace(userID),
				ProjectID: strings.TrimSpace(projectID),
				Graph:     json.RawMessage(raw),
			}

			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				var run *api.Run
				var err error
				if client != nil {
					run, err = client.QueueRun(cmd.Context(), req)
				} else {
					run, err = api.NewRunService(st).Queue(cmd.Context(), req)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued run %s (node %s)\n", run.ID, run.NodeID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&graphID, "graph-id", "", "Identifier of the graph being run")
	cmd.Flags().StringVar(&nodeID, "node", "", "Target node id to execute")
	cmd.Flags().StringVar(&userID, "user", "", "Owning user id")
	cmd.Flags().StringVar(&projectID, "project", "", "Owning project id")
	_ = cmd.MarkFlagRequired("graph-id")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}

func newRunListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}

			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				var runs []api.Run
				if client != nil {
					runs, err = client.ListRuns(cmd.Context(), listStatuses)
				} else {
					runs, err = api.NewRunService(st).List(cmd.Context(), statuses...)
				}
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs found")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Graph", "Node", "Status", "Created", "Error"},
					buildRunRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by run status (queued, processing, completed, failed)")
	return cmd
}

func newRunShowCommand(ctx *commandContext) *cobra.Command {
	var showPayload bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show details for a single run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])

			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				var run *api.Run
				var err error
				if client != nil {
					run, err = client.GetRun(cmd.Context(), id)
				} else {
					run, err = api.NewRunService(st).Describe(cmd.Context(), id)
				}
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				printRun(cmd, run, showPayload)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showPayload, "payload", false, "Include the run output payload")
	return cmd
}

func newRunRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [run-id...]",
		Short: "Requeue failed runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, arg := range args {
				if trimmed := strings.TrimSpace(arg); trimmed != "" {
					ids = append(ids, trimmed)
				}
			}

			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				var retried int64
				var err error
				if client != nil {
					if len(ids) == 0 {
						return fmt.Errorf("run ids are required when the daemon is running")
					}
					for _, id := range ids {
						count, retryErr := client.RetryRun(cmd.Context(), id)
						if retryErr != nil {
							return retryErr
						}
						retried += count
					}
				} else {
					retried, err = st.RetryFailed(cmd.Context(), ids...)
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d run(s)\n", retried)
				return nil
			})
		},
	}
}

func parseStatuses(values []string) ([]store.RunStatus, error) {
	statuses := make([]store.RunStatus, 0, len(values))
	for _, value := range values {
		status, ok := store.ParseRunStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown run status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func buildRunRows(runs []api.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			textutil.Truncate(run.GraphID, 20),
			textutil.Truncate(run.NodeID, 20),
			run.Status,
			run.CreatedAt,
			textutil.Truncate(run.ErrorMessage, 40),
		})
	}
	return rows
}

func printRun(cmd *cobra.Command, run *api.Run, showPayload bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %s\n", run.ID)
	fmt.Fprintf(out, "Graph:     %s\n", run.GraphID)
	fmt.Fprintf(out, "Node:      %s\n", run.NodeID)
	fmt.Fprintf(out, "Status:    %s\n", run.Status)
	if run.UserID != "" {
		fmt.Fprintf(out, "User:      %s\n", run.UserID)
	}
	if run.ProjectID != "" {
		fmt.Fprintf(out, "Project:   %s\n", run.ProjectID)
	}
	if run.CreatedAt != "" {
		fmt.Fprintf(out, "Created:   %s\n", run.CreatedAt)
	}
	if run.StartedAt != "" {
		fmt.Fprintf(out, "Started:   %s\n", run.StartedAt)
	}
	if run.CompletedAt != "" {
		fmt.Fprintf(out, "Completed: %s\n", run.CompletedAt)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", run.ErrorMessage)
	}
	if showPayload && len(run.OutputPayload) > 0 {
		var pretty map[string]any
		if err := json.Unmarshal(run.OutputPayload, &pretty); err == nil {
			encoded, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Fprintf(out, "Payload:\n%s\n", encoded)
		} else {
			fmt.Fprintf(out, "Payload:\n%s\n", run.OutputPayload)
		}
	}
}
