package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gaffer/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ntfy topic not configured")
				return nil
			}
			notifier := notifications.NewService(cfg)
			if err := notifier.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
