package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        graph_id TEXT NOT NULL,
        node_id TEXT NOT NULL,
        user_id TEXT,
        project_id TEXT,
        status TEXT NOT NULL,
        graph_json TEXT NOT NULL,
        output_payload TEXT,
        error_message TEXT,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL,
        started_at TEXT,
        completed_at TEXT,
        last_heartbeat TEXT
    )`,
	`CREATE INDEX IF NOT EXISTS idx_runs_status_created ON runs (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_graph_completed ON runs (graph_id, status, completed_at)`,
	`CREATE TABLE IF NOT EXISTS assets (
        id TEXT PRIMARY KEY,
        type TEXT NOT NULL,
        status TEXT NOT NULL,
        url TEXT,
        storage_key TEXT,
        user_id TEXT,
        project_id TEXT,
        metadata_json TEXT,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_assets_project ON assets (project_id, created_at)`,
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
