package mutations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/common"
	"github.com/inkwell-notes/inkwell/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// WithTx returns a copy of the repository bound to the transactional handle.
func (r *SQLiteRepository) WithTx(tx dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: tx}
}

// Append inserts a new pending record. The sequence is assigned by the
// autoincrement column, so it is strictly increasing across process restarts.
func (r *SQLiteRepository) Append(ctx context.Context, rec *models.MutationRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mutations (user_id, entity_id, op, payload, enqueued_at, attempt_count, status, fail_reason)
		VALUES (?, ?, ?, ?, ?, 0, ?, '')
	`, rec.UserID, rec.EntityID, string(rec.Op), []byte(rec.Payload), rec.EnqueuedAt, string(models.StatusPending))
	if err != nil {
		return 0, fmt.Errorf("failed to append mutation: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read mutation sequence: %w", err)
	}
	rec.Sequence = seq
	rec.Status = models.StatusPending
	return seq, nil
}

// PeekNext returns the lowest-sequence pending record of an entity whose
// line is not blocked by an in-flight or failed record.
func (r *SQLiteRepository) PeekNext(ctx context.Context, userID string) (*models.MutationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT seq, user_id, entity_id, op, payload, enqueued_at, attempt_count, status, fail_reason
		FROM mutations m
		WHERE m.user_id = ? AND m.status = 'pending'
		  AND NOT EXISTS (
			SELECT 1 FROM mutations b
			WHERE b.user_id = m.user_id AND b.entity_id = m.entity_id
			  AND b.status IN ('inflight', 'failed')
		  )
		ORDER BY m.seq
		LIMIT 1
	`, userID)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to peek mutation: %w", err)
	}
	return rec, nil
}

// MarkInFlight transitions pending -> inflight and bumps the attempt counter.
func (r *SQLiteRepository) MarkInFlight(ctx context.Context, seq int64) error {
	return r.transition(ctx, seq,
		`UPDATE mutations SET status = 'inflight', attempt_count = attempt_count + 1
		 WHERE seq = ? AND status = 'pending'`)
}

// MarkPending reverts inflight -> pending after a transient network halt.
func (r *SQLiteRepository) MarkPending(ctx context.Context, seq int64) error {
	return r.transition(ctx, seq,
		`UPDATE mutations SET status = 'pending' WHERE seq = ? AND status = 'inflight'`)
}

// MarkDone removes the acknowledged record.
func (r *SQLiteRepository) MarkDone(ctx context.Context, seq int64) error {
	return r.transition(ctx, seq, `DELETE FROM mutations WHERE seq = ?`)
}

// MarkFailed parks the record with a rejection reason.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, seq int64, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mutations SET status = 'failed', fail_reason = ? WHERE seq = ?`, reason, seq)
	if err != nil {
		return fmt.Errorf("failed to mark mutation failed: %w", err)
	}
	return requireOneRow(res)
}

// Retry reverts all failed records for the entity back to pending.
func (r *SQLiteRepository) Retry(ctx context.Context, userID, entityID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE mutations SET status = 'pending', fail_reason = ''
		WHERE user_id = ? AND entity_id = ? AND status = 'failed'
	`, userID, entityID)
	if err != nil {
		return fmt.Errorf("failed to retry mutations: %w", err)
	}
	return nil
}

// CountPending counts all unacknowledged records for the user.
func (r *SQLiteRepository) CountPending(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mutations WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending mutations: %w", err)
	}
	return n, nil
}

// ListPendingEntities returns distinct entity ids in first-enqueued order.
func (r *SQLiteRepository) ListPendingEntities(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entity_id FROM mutations WHERE user_id = ?
		GROUP BY entity_id ORDER BY MIN(seq)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListFailed returns all failed records for the user, oldest first.
func (r *SQLiteRepository) ListFailed(ctx context.Context, userID string) ([]models.MutationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, user_id, entity_id, op, payload, enqueued_at, attempt_count, status, fail_reason
		FROM mutations WHERE user_id = ? AND status = 'failed' ORDER BY seq
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed mutations: %w", err)
	}
	defer rows.Close()

	var result []models.MutationRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// HasPending reports whether the entity has any unacknowledged records.
func (r *SQLiteRepository) HasPending(ctx context.Context, userID, entityID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mutations WHERE user_id = ? AND entity_id = ?`,
		userID, entityID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check pending mutations: %w", err)
	}
	return n > 0, nil
}

// RebaseEntity rewrites queued records and their note payloads to the
// canonical id. Called after the remote store acknowledged a Create with a
// server-assigned id, before the drain continues with this entity's line.
func (r *SQLiteRepository) RebaseEntity(ctx context.Context, userID, oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, payload FROM mutations WHERE user_id = ? AND entity_id = ?`,
		userID, oldID)
	if err != nil {
		return fmt.Errorf("failed to load mutations for rebase: %w", err)
	}
	defer rows.Close()

	type patch struct {
		seq     int64
		payload []byte
	}
	var patches []patch
	for rows.Next() {
		var p patch
		if err := rows.Scan(&p.seq, &p.payload); err != nil {
			return err
		}
		patches = append(patches, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range patches {
		n, err := models.DecodeNotePayload(p.payload)
		if err != nil {
			return fmt.Errorf("failed to decode payload for rebase: %w", err)
		}
		n.ID = newID
		payload, err := models.NotePayload(n)
		if err != nil {
			return fmt.Errorf("failed to encode rebased payload: %w", err)
		}
		_, err = r.db.ExecContext(ctx,
			`UPDATE mutations SET entity_id = ?, payload = ? WHERE seq = ?`,
			newID, []byte(payload), p.seq)
		if err != nil {
			return fmt.Errorf("failed to rebase mutation: %w", err)
		}
	}
	return nil
}

// Clear removes all records for the user.
func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mutations WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear mutations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) transition(ctx context.Context, seq int64, query string) error {
	res, err := r.db.ExecContext(ctx, query, seq)
	if err != nil {
		return fmt.Errorf("failed to transition mutation: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func scanRecord(scan func(dest ...any) error) (*models.MutationRecord, error) {
	var (
		rec     models.MutationRecord
		op      string
		status  string
		payload []byte
	)
	if err := scan(&rec.Sequence, &rec.UserID, &rec.EntityID, &op, &payload,
		&rec.EnqueuedAt, &rec.AttemptCount, &status, &rec.FailReason); err != nil {
		return nil, err
	}
	rec.Op = models.Operation(op)
	rec.Status = models.MutationStatus(status)
	rec.Payload = payload
	return &rec, nil
}
