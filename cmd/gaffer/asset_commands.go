package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gaffer/internal/api"
	"gaffer/internal/store"
	"gaffer/internal/textutil"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Inspect generated media assets",
	}

	assetsCmd.AddCommand(newAssetsListCommand(ctx))
	assetsCmd.AddCommand(newAssetsShowCommand(ctx))

	return assetsCmd
}

func newAssetsListCommand(ctx *commandContext) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				var assets []api.Asset
				var err error
				if client != nil {
					assets, err = client.ListAssets(cmd.Context(), projectID)
				} else {
					assets, err = api.NewAssetService(st).List(cmd.Context(), projectID)
				}
				if err != nil {
					return err
				}
				if len(assets) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No assets found")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Type", "Status", "Created", "URL"},
					buildAssetRows(assets),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Filter by project id")
	return cmd
}

func newAssetsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <asset-id>",
		Short: "Show details for a single asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])

			return ctx.withAccess(cmd.Context(), func(client *apiClient, st *store.Store) error {
				// Asset lookup has no daemon endpoint; read the store directly.
				if st == nil {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					st, err = store.Open(cfg)
					if err != nil {
						return err
					}
					defer st.Close()
				}
				asset, err := api.NewAssetService(st).Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asset == nil {
					return fmt.Errorf("asset %s not found", id)
				}
				printAsset(cmd, asset)
				return nil
			})
		},
	}
}

func buildAssetRows(assets []api.Asset) [][]string {
	rows := make([][]string, 0, len(assets))
	for _, asset := range assets {
		rows = append(rows, []string{
			asset.ID,
			textutil.DisplayName(asset.Type),
			asset.Status,
			asset.CreatedAt,
			textutil.Truncate(asset.URL, 48),
		})
	}
	return rows
}

func printAsset(cmd *cobra.Command, asset *api.Asset) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", asset.ID)
	fmt.Fprintf(out, "Type:        %s\n", textutil.DisplayName(asset.Type))
	fmt.Fprintf(out, "Status:      %s\n", asset.Status)
	if asset.URL != "" {
		fmt.Fprintf(out, "URL:         %s\n", asset.URL)
	}
	if asset.StorageKey != "" {
		fmt.Fprintf(out, "Storage key: %s\n", asset.StorageKey)
	}
	if asset.ProjectID != "" {
		fmt.Fprintf(out, "Project:     %s\n", asset.ProjectID)
	}
	if asset.CreatedAt != "" {
		fmt.Fprintf(out, "Created:     %s\n", asset.CreatedAt)
	}
	if len(asset.Metadata) > 0 {
		fmt.Fprintf(out, "Metadata:    %s\n", string(asset.Metadata))
	}
}
