package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"gaffer/internal/config"
	"gaffer/internal/logging"
	"gaffer/internal/metrics"
	"gaffer/internal/notifications"
	"gaffer/internal/store"
	"gaffer/internal/worker"
)

// Daemon coordinates the background processing services and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	manager *worker.Manager
	metrics *metrics.Set
	logPath string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Worker       worker.StatusSummary
	DBPath       string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, mgr *worker.Manager, set *metrics.Set) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil || mgr == nil {
		return nil, errors.New("daemon requires config, store, logger, and worker manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "gafferd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		manager:  mgr,
		metrics:  set,
		logPath:  filepath.Join(cfg.Paths.LogDir, "gaffer.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start launches the workflow manager, the API listener, and acquires the
// daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gaffer daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.manager.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	if err := d.api.start(d.ctx); err != nil {
		d.manager.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("gaffer daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.manager.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("gaffer daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// RunHealth returns aggregate run diagnostics.
func (d *Daemon) RunHealth(ctx context.Context) (store.HealthSummary, error) {
	if d.store == nil {
		return store.HealthSummary{}, errors.New("run store unavailable")
	}
	return d.store.Health(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.manager.Status(ctx)
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Worker:       summary,
		DBPath:       filepath.Join(d.cfg.Paths.DataDir, "gaffer.db"),
		LockFilePath: d.lockPath,
	}
}
