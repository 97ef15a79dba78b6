// Package daemonrun composes and runs the gaffer daemon process. Both the
// gafferd binary and the hidden `gaffer daemon` command use it so the two
// entry points cannot drift apart.
package daemonrun

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"gaffer/internal/config"
	"gaffer/internal/daemon"
	"gaffer/internal/executor"
	"gaffer/internal/logging"
	"gaffer/internal/metrics"
	"gaffer/internal/notifications"
	"gaffer/internal/services/imagegen"
	"gaffer/internal/services/mediastore"
	"gaffer/internal/services/videogen"
	"gaffer/internal/store"
	"gaffer/internal/worker"
)

// Run starts the daemon with all collaborators wired from cfg and blocks
// until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer st.Close()

	set := metrics.New()
	images := imagegen.FromConfig(cfg)
	videos := videogen.FromConfig(cfg)
	uploads := mediastore.New(cfg)
	notifier := notifications.NewService(cfg)

	exec := executor.New(images, uploads, st, logger)
	w := worker.New(st, exec, videos, uploads, notifier, set, logger)
	mgr := worker.NewManager(cfg, st, w, set, logger)

	d, err := daemon.New(cfg, st, logger, mgr, set)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("daemon start: %w", err)
	}

	<-ctx.Done()
	logger.Info("gaffer daemon shutting down")
	return nil
}
