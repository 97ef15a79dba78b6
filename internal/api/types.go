package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Run describes a run record in a transport-friendly format.
type Run struct {
	ID            string          `json:"id"`
	GraphID       string          `json:"graphId"`
	NodeID        string          `json:"nodeId"`
	UserID        string          `json:"userId,omitempty"`
	ProjectID     string          `json:"projectId,omitempty"`
	Status        string          `json:"status"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
	OutputPayload json.RawMessage `json:"outputPayload,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
	StartedAt     string          `json:"startedAt,omitempty"`
	CompletedAt   string          `json:"completedAt,omitempty"`
	LastHeartbeat string          `json:"lastHeartbeat,omitempty"`
}

// Asset describes a generated media record for API consumers.
type Asset struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	URL        string          `json:"url,omitempty"`
	StorageKey string          `json:"storageKey,omitempty"`
	UserID     string          `json:"userId,omitempty"`
	ProjectID  string          `json:"projectId,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  string          `json:"createdAt,omitempty"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

// QueueRunRequest is the payload accepted by POST /api/runs.
type QueueRunRequest struct {
	GraphID   string          `json:"graphId"`
	NodeID    string          `json:"nodeId"`
	UserID    string          `json:"userId,omitempty"`
	ProjectID string          `json:"projectId,omitempty"`
	Graph     json.RawMessage `json:"graph"`
}

// RunListResponse wraps a collection of runs for API responses.
type RunListResponse struct {
	Runs []Run `json:"runs"`
}

// RunResponse wraps a single run.
type RunResponse struct {
	Run Run `json:"run"`
}

// RetryResponse reports how many failed runs were requeued.
type RetryResponse struct {
	Retried int64 `json:"retried"`
}

// AssetListResponse wraps a collection of assets.
type AssetListResponse struct {
	Assets []Asset `json:"assets"`
}

// WorkerStatus summarizes background processing state.
type WorkerStatus struct {
	Running   bool           `json:"running"`
	RunStats  map[string]int `json:"runStats"`
	LastError string         `json:"lastError,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool         `json:"running"`
	PID          int          `json:"pid"`
	DBPath       string       `json:"dbPath"`
	LockFilePath string       `json:"lockFilePath"`
	Worker       WorkerStatus `json:"worker"`
}
