package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gaffer/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", filepath.Dir(target), err)
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !os.IsNotExist(err):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set the provider API keys in the file (or export GAFFER_IMAGE_API_KEY and GAFFER_VIDEO_API_KEY) before starting the daemon.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func resolveInitTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
