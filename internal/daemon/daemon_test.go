package daemon_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"gaffer/internal/config"
	"gaffer/internal/daemon"
	"gaffer/internal/executor"
	"gaffer/internal/logging"
	"gaffer/internal/store"
	"gaffer/internal/testsupport"
	"gaffer/internal/worker"
)

func newDaemon(t *testing.T, cfg *config.Config, st *store.Store) *daemon.Daemon {
	t.Helper()
	logger := logging.NewNop()
	exec := executor.New(nil, nil, st, logger)
	w := worker.New(st, exec, nil, nil, nil, nil, logger)
	mgr := worker.NewManager(cfg, st, w, nil, logger)
	d, err := daemon.New(cfg, st, logger, mgr, nil)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, st)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	status := d.Status(ctx)
	if !status.Running || status.PID != os.Getpid() {
		t.Fatalf("unexpected status: %#v", status)
	}
	if !status.Worker.Running {
		t.Fatal("expected worker running")
	}
	if status.DBPath == "" || status.LockFilePath == "" {
		t.Fatalf("expected populated paths: %#v", status)
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped daemon")
	}
}

func TestDaemonLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	first := newDaemon(t, cfg, st)
	second := newDaemon(t, cfg, st)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	err := second.Start(ctx)
	if err == nil {
		second.Stop()
		first.Stop()
		t.Fatal("expected second Start to fail while lock is held")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("Start after release failed: %v", err)
	}
	second.Stop()
}

func TestDaemonRunHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	d := newDaemon(t, cfg, st)

	health, err := d.RunHealth(context.Background())
	if err != nil {
		t.Fatalf("RunHealth failed: %v", err)
	}
	if health.Total != 0 {
		t.Fatalf("expected empty database, got %#v", health)
	}
}
