package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gaffer/internal/config"
	"gaffer/internal/logging"
	"gaffer/internal/metrics"
	"gaffer/internal/store"
)

// Manager runs the daemon-side poll loop: reclaim stale runs, pick up the
// next queued run, and feed it to a Worker while a heartbeat goroutine keeps
// the run's claim fresh.
type Manager struct {
	cfg     *config.Config
	store   *store.Store
	worker  *Worker
	metrics *metrics.Set
	logger  *slog.Logger

	pollInterval      time.Duration
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastError string
}

// StatusSummary reports workflow state for status endpoints.
type StatusSummary struct {
	Running   bool
	RunStats  map[store.RunStatus]int
	LastError string
}

// NewManager constructs a Manager using the workflow intervals from config.
func NewManager(cfg *config.Config, st *store.Store, w *Worker, m *metrics.Set, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:               cfg,
		store:             st,
		worker:            w,
		metrics:           m,
		logger:            logging.NewComponentLogger(logger, "workflow"),
		pollInterval:      time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeatInterval: time.Duration(cfg.Workflow.HeartbeatInterval) * time.Second,
		heartbeatTimeout:  time.Duration(cfg.Workflow.HeartbeatTimeout) * time.Second,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the poll loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status summarizes workflow state including current run counts.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.Lock()
	summary := StatusSummary{Running: m.running, LastError: m.lastError}
	m.mu.Unlock()

	stats, err := m.store.RunStats(ctx)
	if err != nil {
		m.logger.Warn("failed to load run stats", logging.Error(err))
	} else {
		summary.RunStats = stats
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	if err != nil {
		m.lastError = err.Error()
	} else {
		m.lastError = ""
	}
	m.mu.Unlock()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.reclaimStale(ctx)

		run, err := m.store.NextQueued(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.logger.Error("failed to fetch next queued run", logging.Error(err))
			m.sleep(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if run == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		m.processWithHeartbeat(ctx, run)
	}
}

func (m *Manager) processWithHeartbeat(ctx context.Context, run *store.Run) {
	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeatLoop(hbCtx, &hbWG, run.ID)

	if err := m.worker.ProcessRun(ctx, run.ID); err != nil {
		if !errors.Is(err, context.Canceled) {
			m.setLastError(err)
			m.logger.Error("run processing failed",
				logging.String(logging.FieldRunID, run.ID),
				logging.Error(err))
		}
	} else {
		m.setLastError(nil)
	}

	stopHeartbeat()
	hbWG.Wait()
}

func (m *Manager) heartbeatLoop(ctx context.Context, wg *sync.WaitGroup, runID string) {
	defer wg.Done()
	ticker := time.NewTicker(m.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.UpdateRunHeartbeat(ctx, runID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				m.logger.Warn("heartbeat update failed",
					logging.String(logging.FieldRunID, runID),
					logging.Error(err))
			}
		}
	}
}

// reclaimStale returns processing runs with an expired heartbeat to the
// queue. A crashed worker never marks its run terminal; this is the repair
// path that makes such runs retryable.
func (m *Manager) reclaimStale(ctx context.Context) {
	if m.heartbeatTimeout <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.heartbeatTimeout)
	reclaimed, err := m.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.logger.Warn("reclaim stale processing failed; stuck runs may remain", logging.Error(err))
		}
		return
	}
	if reclaimed > 0 {
		if m.metrics != nil {
			m.metrics.RunsReclaimed.Add(float64(reclaimed))
		}
		m.logger.Info("reclaimed stale runs", logging.Int64("count", reclaimed))
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
