package store

import (
	"context"
	"fmt"
	"time"
)

// CompleteVideoRun promotes a placeholder video asset to ready and completes
// its run in a single transaction. A crash between provider download and
// finalize leaves both rows untouched, so the observable state is always
// either "still generating" or "asset ready and run completed", never a
// completed run pointing at a missing file.
func (s *Store) CompleteVideoRun(ctx context.Context, runID, assetID, url, storageKey, outputPayload string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finalize: %w", err)
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(
			ctx,
			`UPDATE assets
             SET status = ?, url = ?, storage_key = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			AssetReady,
			url,
			storageKey,
			now,
			assetID,
			AssetGenerating,
		)
		if err != nil {
			return fmt.Errorf("finalize asset: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("finalize asset rows affected: %w", err)
		}
		if affected != 1 {
			return fmt.Errorf("asset %s is not awaiting finalize", assetID)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE runs
             SET status = ?, output_payload = ?, error_message = NULL,
                 completed_at = ?, last_heartbeat = NULL, updated_at = ?
             WHERE id = ?`,
			RunCompleted,
			outputPayload,
			now,
			now,
			runID,
		); err != nil {
			return fmt.Errorf("finalize run: %w", err)
		}

		return tx.Commit()
	})
}

// FailVideoRun marks a placeholder video asset failed and fails its run in
// one transaction, mirroring CompleteVideoRun for the error path.
func (s *Store) FailVideoRun(ctx context.Context, runID, assetID, message string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin fail finalize: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE assets SET status = ?, updated_at = ? WHERE id = ?`,
			AssetFailed,
			now,
			assetID,
		); err != nil {
			return fmt.Errorf("fail asset: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE runs
             SET status = ?, error_message = ?, completed_at = ?,
                 last_heartbeat = NULL, updated_at = ?
             WHERE id = ?`,
			RunFailed,
			message,
			now,
			now,
			runID,
		); err != nil {
			return fmt.Errorf("fail run: %w", err)
		}

		return tx.Commit()
	})
}
