package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gaffer/internal/executor"
	"gaffer/internal/graph"
	"gaffer/internal/logging"
	"gaffer/internal/metrics"
	"gaffer/internal/notifications"
	"gaffer/internal/services"
	"gaffer/internal/store"
)

// Worker processes individual runs. It is safe to share one Worker across
// goroutines; each ProcessRun invocation owns its run exclusively via the
// claim.
type Worker struct {
	store    *store.Store
	exec     *executor.Executor
	videos   executor.VideoGenerator
	uploads  executor.Uploader
	notifier notifications.Service
	metrics  *metrics.Set
	logger   *slog.Logger
}

// New constructs a Worker. The video generator and uploader are only needed
// for graphs containing video generation nodes; metrics and notifier may be
// nil.
func New(
	st *store.Store,
	exec *executor.Executor,
	videos executor.VideoGenerator,
	uploads executor.Uploader,
	notifier notifications.Service,
	m *metrics.Set,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		store:    st,
		exec:     exec,
		videos:   videos,
		uploads:  uploads,
		notifier: notifier,
		metrics:  m,
		logger:   logging.NewComponentLogger(logger, "worker"),
	}
}

// ProcessRun claims and executes one run. Losing the claim race, or being
// handed a run id that does not exist or is not queued, is a silent no-op.
// The returned error covers storage-level problems only; run-level failures
// are persisted on the run record instead.
func (w *Worker) ProcessRun(ctx context.Context, runID string) error {
	claimed, err := w.store.ClaimRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("claim run %s: %w", runID, err)
	}
	if !claimed {
		return nil
	}

	run, err := w.store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("load claimed run %s: %w", runID, err)
	}
	if run == nil {
		return fmt.Errorf("claimed run %s disappeared", runID)
	}

	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithGraphID(ctx, run.GraphID)
	logger := logging.WithContext(ctx, w.logger)

	if w.metrics != nil {
		w.metrics.RunsClaimed.Inc()
	}
	started := time.Now()
	logger.Info("run claimed", logging.String(logging.FieldNodeID, run.NodeID))

	err = w.processClaimed(ctx, logger, run)
	if w.metrics != nil {
		w.metrics.RunDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		w.failRun(ctx, logger, run, err.Error(), "")
	}
	return nil
}

// processClaimed executes the claimed run. Any returned error terminates the
// run as failed with that message.
func (w *Worker) processClaimed(ctx context.Context, logger *slog.Logger, run *store.Run) error {
	g, err := graph.Decode([]byte(run.GraphJSON))
	if err != nil {
		return err
	}
	target := g.NodeByID(run.NodeID)
	if target == nil {
		return fmt.Errorf("target node %s not present in graph", run.NodeID)
	}

	rctx := executor.NewContext(run.ID, run.GraphID, run.UserID, run.ProjectID)
	if err := w.loadPreviousRuns(ctx, run.GraphID, rctx); err != nil {
		// The cache is an optimization; a failed load costs recomputation,
		// not correctness.
		logger.Warn("loading prior run results failed", logging.Error(err))
	}

	result, err := w.executeNodeWithDependencies(ctx, g, target, rctx, make(map[string]bool))
	if err != nil {
		return err
	}
	if result.State != executor.StateSuccess {
		message := result.Err
		if message == "" {
			message = fmt.Sprintf("node %s finished in state %s", result.NodeID, result.State)
		}
		if result.NodeID != run.NodeID {
			message = fmt.Sprintf("dependency %s failed: %s", result.NodeID, message)
		}
		w.failRun(ctx, logger, run, message, "")
		return nil
	}

	payload, err := EncodePayload(&executor.Result{
		NodeID:   target.ID,
		NodeType: target.Type,
		State:    executor.StateSuccess,
		Outputs:  result.Outputs,
	})
	if err != nil {
		return err
	}

	if placeholder, ok := pendingVideoAsset(result); ok {
		return w.finalizeVideo(ctx, logger, run, g, target, rctx, result, placeholder)
	}

	if err := w.store.MarkRunCompleted(ctx, run.ID, payload); err != nil {
		return fmt.Errorf("persist run completion: %w", err)
	}
	if w.metrics != nil {
		w.metrics.RunsCompleted.Inc()
	}
	logger.Info("run completed", logging.String(logging.FieldNodeType, string(target.Type)))
	if w.notifier != nil {
		if err := w.notifier.NotifyRunCompleted(ctx, run.ID, string(target.Type)); err != nil {
			logger.Warn("run completion notification failed", logging.Error(err))
		}
	}
	return nil
}

// executeNodeWithDependencies walks the dependency chain depth first.
// Already-executed nodes return their recorded result unchanged. A node on
// the current recursion path marks a cycle, which fails the run immediately.
// A dependency that finishes in a non-success state is returned as-is so the
// run fails with the root cause.
func (w *Worker) executeNodeWithDependencies(
	ctx context.Context,
	g *graph.Graph,
	node *graph.Node,
	rctx *executor.Context,
	visiting map[string]bool,
) (*executor.Result, error) {
	if result, ok := rctx.Result(node.ID); ok {
		return result, nil
	}
	if visiting[node.ID] {
		return nil, fmt.Errorf("dependency cycle detected at node %s", node.ID)
	}
	visiting[node.ID] = true
	defer delete(visiting, node.ID)

	for _, edge := range g.IncomingEdges(node.ID) {
		dep := g.NodeByID(edge.Source)
		if dep == nil {
			return nil, fmt.Errorf("edge %s references unknown source node %s", edge.ID, edge.Source)
		}
		depResult, err := w.executeNodeWithDependencies(ctx, g, dep, rctx, visiting)
		if err != nil {
			return nil, err
		}
		if depResult.State != executor.StateSuccess {
			return depResult, nil
		}
	}

	inputs, err := executor.ResolveInputs(g, node, rctx)
	if err != nil {
		return nil, err
	}
	if inputs == nil {
		// Dependencies just ran to success, so unresolvable inputs indicate
		// an ordering bug rather than a transient condition.
		return nil, fmt.Errorf("inputs for node %s unresolved after dependency execution", node.ID)
	}

	result := w.exec.Execute(services.WithNodeID(ctx, node.ID), node, inputs, rctx)
	rctx.SetResult(result)
	if w.metrics != nil {
		w.metrics.NodeExecutions.WithLabelValues(string(node.Type), string(result.State)).Inc()
	}
	return result, nil
}

// loadPreviousRuns seeds the context with the most recently completed result
// per node id from prior runs on the same graph.
func (w *Worker) loadPreviousRuns(ctx context.Context, graphID string, rctx *executor.Context) error {
	prior, err := w.store.ListCompletedByGraph(ctx, graphID)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(prior))
	for _, run := range prior {
		payload, err := DecodePayload(run.OutputPayload)
		if err != nil || payload == nil || payload.NodeID == "" {
			continue
		}
		if seen[payload.NodeID] {
			continue
		}
		// A payload still carrying a generating placeholder is not a
		// reusable result.
		if ref, ok := executor.AssetRefFrom(payload.Outputs[graph.KeyVideoAsset]); ok {
			if ref.Status == string(store.AssetGenerating) {
				continue
			}
		}
		seen[payload.NodeID] = true
		rctx.SetResult(payload.Result())
	}
	return nil
}

// failRun persists a run failure. When a placeholder asset id is known the
// asset fails in the same transaction.
func (w *Worker) failRun(ctx context.Context, logger *slog.Logger, run *store.Run, message, placeholderAssetID string) {
	var err error
	if placeholderAssetID != "" {
		err = w.store.FailVideoRun(ctx, run.ID, placeholderAssetID, message)
	} else {
		err = w.store.MarkRunFailed(ctx, run.ID, message)
	}
	if err != nil {
		logger.Error("persisting run failure failed", logging.Error(err))
	}
	if w.metrics != nil {
		w.metrics.RunsFailed.Inc()
	}
	logger.Warn("run failed", logging.String("reason", message))
	if w.notifier != nil {
		if nerr := w.notifier.NotifyRunFailed(ctx, run.ID, message); nerr != nil {
			logger.Warn("run failure notification failed", logging.Error(nerr))
		}
	}
}

// pendingVideoAsset extracts the generating placeholder from a video node's
// outputs, if present.
func pendingVideoAsset(result *executor.Result) (executor.AssetRef, bool) {
	ref, ok := executor.AssetRefFrom(result.Outputs[graph.KeyVideoAsset])
	if !ok {
		return executor.AssetRef{}, false
	}
	if ref.Status != string(store.AssetGenerating) {
		return executor.AssetRef{}, false
	}
	return ref, true
}
