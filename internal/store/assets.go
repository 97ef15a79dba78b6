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

// NewAssetParams carries the caller-supplied fields for recording an asset.
type NewAssetParams struct {
	Type         AssetType
	Status       AssetStatus
	URL          string
	StorageKey   string
	UserID       string
	ProjectID    string
	MetadataJSON string
}

// CreateAsset records a generated media asset and returns it. Video assets
// are typically created in the generating state before the provider call and
// promoted to ready once the file is uploaded.
func (s *Store) CreateAsset(ctx context.Context, params NewAssetParams) (*Asset, error) {
	if params.Type != AssetImage && params.Type != AssetVideo {
		return nil, fmt.Errorf("unknown asset type %q", params.Type)
	}
	status := params.Status
	if status == "" {
		status = AssetReady
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO assets (
            id, type, status, url, storage_key, user_id, project_id,
            metadata_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		params.Type,
		status,
		nullableString(params.URL),
		nullableString(params.StorageKey),
		nullableString(params.UserID),
		nullableString(params.ProjectID),
		nullableString(params.MetadataJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	return s.GetAsset(ctx, id)
}

// GetAsset fetches an asset by identifier. Returns nil when absent.
func (s *Store) GetAsset(ctx context.Context, id string) (*Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// ListAssets returns assets, optionally filtered by project, newest first.
func (s *Store) ListAssets(ctx context.Context, projectID string) ([]*Asset, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(projectID) == "" {
		rows, err = s.db.QueryContext(
			ctx,
			`SELECT `+assetColumns+` FROM assets ORDER BY created_at DESC`,
		)
	} else {
		rows, err = s.db.QueryContext(
			ctx,
			`SELECT `+assetColumns+` FROM assets WHERE project_id = ? ORDER BY created_at DESC`,
			projectID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// MarkAssetReady promotes a generating asset once its file is uploaded.
func (s *Store) MarkAssetReady(ctx context.Context, id, url, storageKey string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE assets
         SET status = ?, url = ?, storage_key = ?, updated_at = ?
         WHERE id = ?`,
		AssetReady,
		url,
		storageKey,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark asset ready: %w", err)
	}
	return nil
}

// MarkAssetFailed records that generation or upload of an asset failed.
func (s *Store) MarkAssetFailed(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE assets SET status = ?, updated_at = ? WHERE id = ?`,
		AssetFailed,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark asset failed: %w", err)
	}
	return nil
}

const assetColumns = "id, type, status, url, storage_key, user_id, project_id, metadata_json, created_at, updated_at"

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*Asset, error) {
	var (
		id         string
		typeStr    string
		statusStr  string
		url        sql.NullString
		storageKey sql.NullString
		userID     sql.NullString
		projectID  sql.NullString
		metadata   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&typeStr,
		&statusStr,
		&url,
		&storageKey,
		&userID,
		&projectID,
		&metadata,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	asset := &Asset{
		ID:           id,
		Type:         AssetType(typeStr),
		Status:       AssetStatus(statusStr),
		URL:          url.String,
		StorageKey:   storageKey.String,
		UserID:       userID.String,
		ProjectID:    projectID.String,
		MetadataJSON: metadata.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		asset.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		asset.UpdatedAt = updated
	}
	return asset, nil
}
