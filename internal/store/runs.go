package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunParams carries the caller-supplied fields for queuing a run.
type NewRunParams struct {
	GraphID   string
	NodeID    string
	UserID    string
	ProjectID string
	GraphJSON string
}

// CreateRun inserts a new run in the queued state and returns it.
func (s *Store) CreateRun(ctx context.Context, params NewRunParams) (*Run, error) {
	if strings.TrimSpace(params.GraphID) == "" {
		return nil, errors.New("graph id is required")
	}
	if strings.TrimSpace(params.NodeID) == "" {
		return nil, errors.New("node id is required")
	}
	if strings.TrimSpace(params.GraphJSON) == "" {
		return nil, errors.New("graph json is required")
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            id, graph_id, node_id, user_id, project_id, status, graph_json,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		params.GraphID,
		params.NodeID,
		nullableString(params.UserID),
		nullableString(params.ProjectID),
		RunQueued,
		params.GraphJSON,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun fetches a run by identifier. Returns nil when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs filtered by status set (or all runs when no status is
// provided), newest first.
func (s *Store) ListRuns(ctx context.Context, statuses ...RunStatus) ([]*Run, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + runColumns + ` FROM runs`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// NextQueued returns the oldest queued run, or nil when the queue is empty.
func (s *Store) NextQueued(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE status = ? ORDER BY created_at LIMIT 1`,
		RunQueued,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next queued run: %w", err)
	}
	return run, nil
}

// ClaimRun transitions a run from queued to processing. The update only
// succeeds when the row is still queued at update time, which is atomic at
// the storage layer; this is the sole mutual-exclusion mechanism between
// workers. Returns false when the run was already claimed or does not exist.
func (s *Store) ClaimRun(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, started_at = ?, last_heartbeat = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		RunProcessing,
		now,
		now,
		now,
		id,
		RunQueued,
	)
	if err != nil {
		return false, fmt.Errorf("claim run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim run rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkRunCompleted finalizes a run with its output payload.
func (s *Store) MarkRunCompleted(ctx context.Context, id, outputPayload string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, output_payload = ?, error_message = NULL,
             completed_at = ?, last_heartbeat = NULL, updated_at = ?
         WHERE id = ?`,
		RunCompleted,
		outputPayload,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark run completed: %w", err)
	}
	return nil
}

// MarkRunFailed finalizes a run with a human-readable error message.
func (s *Store) MarkRunFailed(ctx context.Context, id, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, error_message = ?, completed_at = ?,
             last_heartbeat = NULL, updated_at = ?
         WHERE id = ?`,
		RunFailed,
		message,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark run failed: %w", err)
	}
	return nil
}

// ListCompletedByGraph returns completed runs for a graph, most recently
// completed first. Workers use this as the cross-run result cache.
func (s *Store) ListCompletedByGraph(ctx context.Context, graphID string) ([]*Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs
         WHERE graph_id = ? AND status = ?
         ORDER BY completed_at DESC`,
		graphID,
		RunCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// UpdateRunHeartbeat updates the last heartbeat timestamp for an in-flight run.
func (s *Store) UpdateRunHeartbeat(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE runs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update run heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns processing runs whose heartbeat expired back
// to queued so another worker can retry them after a crash.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, started_at = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		RunQueued,
		now,
		RunProcessing,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale runs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed runs back to queued for reprocessing. With no ids,
// every failed run is retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE runs
             SET status = ?, error_message = NULL, output_payload = NULL,
                 started_at = NULL, completed_at = NULL, updated_at = ?
             WHERE status = ?`,
			RunQueued,
			now,
			RunFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed runs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, RunQueued, now)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE runs
        SET status = ?, error_message = NULL, output_payload = NULL,
            started_at = NULL, completed_at = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = '` + string(RunFailed) + `'`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected runs: %w", err)
	}
	return res.RowsAffected()
}

// RunStats returns a count of runs grouped by status.
func (s *Store) RunStats(ctx context.Context) (map[RunStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[RunStatus]int)
	for rows.Next() {
		var status RunStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates run state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.RunStats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case RunQueued:
			health.Queued += count
		case RunProcessing:
			health.Processing += count
		case RunCompleted:
			health.Completed += count
		case RunFailed:
			health.Failed += count
		}
	}
	return health, nil
}

const runColumns = "id, graph_id, node_id, user_id, project_id, status, graph_json, output_payload, error_message, created_at, updated_at, started_at, completed_at, last_heartbeat"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id            string
		graphID       string
		nodeID        string
		userID        sql.NullString
		projectID     sql.NullString
		statusStr     string
		graphJSON     string
		outputPayload sql.NullString
		errorMessage  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		startedRaw    sql.NullString
		completedRaw  sql.NullString
		heartbeatRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&graphID,
		&nodeID,
		&userID,
		&projectID,
		&statusStr,
		&graphJSON,
		&outputPayload,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
		&heartbeatRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:            id,
		GraphID:       graphID,
		NodeID:        nodeID,
		UserID:        userID.String,
		ProjectID:     projectID.String,
		Status:        RunStatus(statusStr),
		GraphJSON:     graphJSON,
		OutputPayload: outputPayload.String,
		ErrorMessage:  errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	run.StartedAt = parseOptionalTime(startedRaw)
	run.CompletedAt = parseOptionalTime(completedRaw)
	run.LastHeartbeat = parseOptionalTime(heartbeatRaw)
	return run, nil
}

func parseOptionalTime(raw sql.NullString) *time.Time {
	if !raw.Valid {
		return nil
	}
	t, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &t
}

func collectRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
