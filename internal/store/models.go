package store

import (
	"strings"
	"time"
)

// RunStatus represents the lifecycle of a run record.
type RunStatus string

const (
	RunQueued     RunStatus = "queued"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

var allRunStatuses = []RunStatus{RunQueued, RunProcessing, RunCompleted, RunFailed}

var runStatusSet = func() map[RunStatus]struct{} {
	set := make(map[RunStatus]struct{}, len(allRunStatuses))
	for _, status := range allRunStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllRunStatuses returns the ordered list of known run statuses.
func AllRunStatuses() []RunStatus {
	cp := make([]RunStatus, len(allRunStatuses))
	copy(cp, allRunStatuses)
	return cp
}

// ParseRunStatus converts a string into a known RunStatus.
func ParseRunStatus(value string) (RunStatus, bool) {
	normalized := RunStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := runStatusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a run status is final.
func (s RunStatus) IsTerminal() bool {
	return s == RunCompleted || s == RunFailed
}

// Run is one persisted execution attempt of a graph targeting NodeID.
// GraphJSON is the frozen snapshot taken when the run was queued; workers
// never re-fetch a live graph.
type Run struct {
	ID            string
	GraphID       string
	NodeID        string
	UserID        string
	ProjectID     string
	Status        RunStatus
	GraphJSON     string
	OutputPayload string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	LastHeartbeat *time.Time
}

// AssetStatus represents the lifecycle of a generated asset.
type AssetStatus string

const (
	AssetGenerating AssetStatus = "generating"
	AssetReady      AssetStatus = "ready"
	AssetFailed     AssetStatus = "failed"
)

// AssetType distinguishes generated media kinds.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
)

// Asset is a generated (or generating) media record. URL and StorageKey are
// empty while Status is generating.
type Asset struct {
	ID           string
	Type         AssetType
	Status       AssetStatus
	URL          string
	StorageKey   string
	UserID       string
	ProjectID    string
	MetadataJSON string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HealthSummary describes aggregated run counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Completed  int
	Failed     int
}
