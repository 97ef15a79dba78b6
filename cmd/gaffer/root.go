package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var apiFlag string
	var configFlag string

	ctx := newCommandContext(&apiFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "gaffer",
		Short:         "Gaffer graph execution CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "Address of the gaffer daemon API")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newAssetsCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newDaemonCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
