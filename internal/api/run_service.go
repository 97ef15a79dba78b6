package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gaffer/internal/graph"
	"gaffer/internal/store"
)

// RunReader abstracts run persistence interactions needed for API queries.
type RunReader interface {
	ListRuns(ctx context.Context, statuses ...store.RunStatus) ([]*store.Run, error)
	GetRun(ctx context.Context, id string) (*store.Run, error)
	RunStats(ctx context.Context) (map[store.RunStatus]int, error)
}

// RunWriter abstracts the mutations exposed through the API surface.
type RunWriter interface {
	CreateRun(ctx context.Context, params store.NewRunParams) (*store.Run, error)
	RetryFailed(ctx context.Context, ids ...string) (int64, error)
}

// RunStore combines the read and write halves; *store.Store satisfies it.
type RunStore interface {
	RunReader
	RunWriter
}

// RunService exposes run operations returning API DTOs.
type RunService struct {
	store RunStore
}

// NewRunService constructs a RunService around the provided store.
func NewRunService(st RunStore) *RunService {
	if st == nil {
		return nil
	}
	return &RunService{store: st}
}

// Queue validates the submitted graph snapshot and inserts a queued run
// targeting the requested node. The snapshot is frozen as submitted.
func (s *RunService) Queue(ctx context.Context, req QueueRunRequest) (*Run, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("run store unavailable")
	}
	if strings.TrimSpace(req.GraphID) == "" {
		return nil, errors.New("graphId is required")
	}
	if strings.TrimSpace(req.NodeID) == "" {
		return nil, errors.New("nodeId is required")
	}
	if len(req.Graph) == 0 {
		return nil, errors.New("graph is required")
	}

	g, err := graph.Decode(req.Graph)
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate graph: %w", err)
	}
	if g.NodeByID(req.NodeID) == nil {
		return nil, fmt.Errorf("target node %s not present in graph", req.NodeID)
	}

	run, err := s.store.CreateRun(ctx, store.NewRunParams{
		GraphID:   req.GraphID,
		NodeID:    req.NodeID,
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
		GraphJSON: string(req.Graph),
	})
	if err != nil {
		return nil, err
	}
	dto := FromRun(run)
	return &dto, nil
}

// List returns runs filtered by status.
func (s *RunService) List(ctx context.Context, statuses ...store.RunStatus) ([]Run, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	runs, err := s.store.ListRuns(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromRuns(runs), nil
}

// Describe fetches a single run. Returns nil when absent.
func (s *RunService) Describe(ctx context.Context, id string) (*Run, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	run, err := s.store.GetRun(ctx, id)
	if err != nil || run == nil {
		return nil, err
	}
	dto := FromRun(run)
	return &dto, nil
}

// Retry requeues failed runs, optionally restricted to the given ids.
func (s *RunService) Retry(ctx context.Context, ids ...string) (int64, error) {
	if s == nil || s.store == nil {
		return 0, errors.New("run store unavailable")
	}
	return s.store.RetryFailed(ctx, ids...)
}

// Stats returns run summary counts keyed by status string.
func (s *RunService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.RunStats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeRunStats(stats), nil
}

// AssetReader abstracts asset persistence lookups.
type AssetReader interface {
	ListAssets(ctx context.Context, projectID string) ([]*store.Asset, error)
	GetAsset(ctx context.Context, id string) (*store.Asset, error)
}

// AssetService exposes read-only asset operations returning API DTOs.
type AssetService struct {
	store AssetReader
}

// NewAssetService constructs an AssetService around the provided reader.
func NewAssetService(st AssetReader) *AssetService {
	if st == nil {
		return nil
	}
	return &AssetService{store: st}
}

// List returns assets, optionally filtered by project.
func (s *AssetService) List(ctx context.Context, projectID string) ([]Asset, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	assets, err := s.store.ListAssets(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return FromAssets(assets), nil
}

// Describe fetches a single asset. Returns nil when absent.
func (s *AssetService) Describe(ctx context.Context, id string) (*Asset, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	asset, err := s.store.GetAsset(ctx, id)
	if err != nil || asset == nil {
		return nil, err
	}
	dto := FromAsset(asset)
	return &dto, nil
}
