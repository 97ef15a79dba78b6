package main

import (
	"github.com/spf13/cobra"

	"gaffer/internal/daemonrun"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:          "daemon",
		Short:        "Run the gaffer daemon in the foreground",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg)
		},
	}
}
