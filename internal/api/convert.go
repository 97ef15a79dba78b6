package api

import (
	"encoding/json"
	"strings"
	"time"

	"gaffer/internal/store"
)

// FromRun converts a run record to its API representation.
func FromRun(run *store.Run) Run {
	if run == nil {
		return Run{}
	}

	dto := Run{
		ID:           run.ID,
		GraphID:      run.GraphID,
		NodeID:       run.NodeID,
		UserID:       run.UserID,
		ProjectID:    run.ProjectID,
		Status:       string(run.Status),
		ErrorMessage: run.ErrorMessage,
	}
	if raw := strings.TrimSpace(run.OutputPayload); raw != "" {
		dto.OutputPayload = json.RawMessage(raw)
	}
	if !run.CreatedAt.IsZero() {
		dto.CreatedAt = run.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !run.UpdatedAt.IsZero() {
		dto.UpdatedAt = run.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	dto.StartedAt = formatOptional(run.StartedAt)
	dto.CompletedAt = formatOptional(run.CompletedAt)
	dto.LastHeartbeat = formatOptional(run.LastHeartbeat)
	return dto
}

// FromRuns converts a slice of run records into API DTOs.
func FromRuns(runs []*store.Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		out = append(out, FromRun(run))
	}
	return out
}

// FromAsset converts an asset record to its API representation.
func FromAsset(asset *store.Asset) Asset {
	if asset == nil {
		return Asset{}
	}

	dto := Asset{
		ID:         asset.ID,
		Type:       string(asset.Type),
		Status:     string(asset.Status),
		URL:        asset.URL,
		StorageKey: asset.StorageKey,
		UserID:     asset.UserID,
		ProjectID:  asset.ProjectID,
	}
	if raw := strings.TrimSpace(asset.MetadataJSON); raw != "" {
		dto.Metadata = json.RawMessage(raw)
	}
	if !asset.CreatedAt.IsZero() {
		dto.CreatedAt = asset.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !asset.UpdatedAt.IsZero() {
		dto.UpdatedAt = asset.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromAssets converts a slice of asset records into API DTOs.
func FromAssets(assets []*store.Asset) []Asset {
	if len(assets) == 0 {
		return nil
	}
	out := make([]Asset, 0, len(assets))
	for _, asset := range assets {
		out = append(out, FromAsset(asset))
	}
	return out
}

// MergeRunStats produces a string-keyed representation of run stats.
func MergeRunStats(stats map[store.RunStatus]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FormatTime converts a time to the API timestamp format or returns empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatOptional(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
