package mutations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE mutations (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  op TEXT NOT NULL,
  payload BLOB NOT NULL,
  enqueued_at INTEGER NOT NULL,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  fail_reason TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_mutations_entity ON mutations(user_id, entity_id, seq);
`)
	require.NoError(t, err)

	return db
}

func appendRec(t *testing.T, r *SQLiteRepository, userID, entityID string, op models.Operation) int64 {
	t.Helper()
	payload, err := models.NotePayload(models.Note{ID: entityID, UserID: userID, Title: "t"})
	require.NoError(t, err)
	seq, err := r.Append(context.Background(), &models.MutationRecord{
		UserID: userID, EntityID: entityID, Op: op, Payload: payload, EnqueuedAt: 1,
	})
	require.NoError(t, err)
	return seq
}

func TestAppend_AssignsIncreasingSequence(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	s1 := appendRec(t, r, "u1", "n1", models.OpCreate)
	s2 := appendRec(t, r, "u1", "n1", models.OpUpdate)
	assert.Less(t, s1, s2)

	n, err := r.CountPending(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPeekNext_FIFOWithinEntity(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	s1 := appendRec(t, r, "u1", "n1", models.OpCreate)
	appendRec(t, r, "u1", "n1", models.OpUpdate)

	rec, err := r.PeekNext(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s1, rec.Sequence)
	assert.Equal(t, models.OpCreate, rec.Op)
}

func TestPeekNext_SkipsEntityWithInFlight(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	s1 := appendRec(t, r, "u1", "n1", models.OpCreate)
	appendRec(t, r, "u1", "n1", models.OpUpdate)
	s3 := appendRec(t, r, "u1", "n2", models.OpCreate)

	require.NoError(t, r.MarkInFlight(ctx, s1))

	// n1's line is blocked, n2 is free
	rec, err := r.PeekNext(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s3, rec.Sequence)
}

func TestPeekNext_FailedBlocksEntityLine(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	s1 := appendRec(t, r, "u1", "n1", models.OpCreate)
	appendRec(t, r, "u1", "n1", models.OpUpdate)

	require.NoError(t, r.MarkInFlight(ctx, s1))
	require.NoError(t, r.MarkFailed(ctx, s1, "invalid folder"))

	_, err := r.PeekNext(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// retry releases the line, replay restarts from the failed record
	require.NoError(t, r.Retry(ctx, "u1", "n1"))
	rec, err := r.PeekNext(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s1, rec.Sequence)
	assert.Empty(t, rec.FailReason)
}

func TestPeekNext_EmptyLog(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.PeekNext(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMarkInFlight_BumpsAttemptCount(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	seq := appendRec(t, r, "u1", "n1", models.OpCreate)
	require.NoError(t, r.MarkInFlight(ctx, seq))
	require.NoError(t, r.MarkPending(ctx, seq))
	require.NoError(t, r.MarkInFlight(ctx, seq))

	var attempts int
	require.NoError(t, r.db.QueryRowContext(ctx,
		`SELECT attempt_count FROM mutations WHERE seq = ?`, seq).Scan(&attempts))
	assert.Equal(t, 2, attempts)
}

func TestMarkInFlight_OnlyFromPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	seq := appendRec(t, r, "u1", "n1", models.OpCreate)
	require.NoError(t, r.MarkInFlight(ctx, seq))
	assert.Error(t, r.MarkInFlight(ctx, seq), "double in-flight must be rejected")
}

func TestMarkDone_RemovesRecord(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	seq := appendRec(t, r, "u1", "n1", models.OpCreate)
	require.NoError(t, r.MarkInFlight(ctx, seq))
	require.NoError(t, r.MarkDone(ctx, seq))

	n, err := r.CountPending(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListPendingEntities_DistinctFirstEnqueuedOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	appendRec(t, r, "u1", "n2", models.OpCreate)
	appendRec(t, r, "u1", "n1", models.OpCreate)
	appendRec(t, r, "u1", "n2", models.OpUpdate)
	appendRec(t, r, "u2", "other", models.OpCreate)

	ids, err := r.ListPendingEntities(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n2", "n1"}, ids)
}

func TestListFailed(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	seq := appendRec(t, r, "u1", "n1", models.OpUpdate)
	require.NoError(t, r.MarkInFlight(ctx, seq))
	require.NoError(t, r.MarkFailed(ctx, seq, "invalid folder"))

	failed, err := r.ListFailed(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "n1", failed[0].EntityID)
	assert.Equal(t, "invalid folder", failed[0].FailReason)
	assert.Equal(t, models.StatusFailed, failed[0].Status)
}

func TestRebaseEntity_RewritesRecordsAndPayloads(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	appendRec(t, r, "u1", "tmp-1", models.OpUpdate)
	appendRec(t, r, "u1", "tmp-1", models.OpArchive)

	require.NoError(t, r.RebaseEntity(ctx, "u1", "tmp-1", "srv-1"))

	rec, err := r.PeekNext(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.EntityID)

	n, err := models.DecodeNotePayload(rec.Payload)
	require.NoError(t, err)
	assert.Equal(t, "srv-1", n.ID, "payload id must be rewritten too")

	has, err := r.HasPending(ctx, "u1", "tmp-1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasPending(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	has, err := r.HasPending(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.False(t, has)

	appendRec(t, r, "u1", "n1", models.OpCreate)

	has, err = r.HasPending(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestClear_ScopedByUser(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	appendRec(t, r, "u1", "n1", models.OpCreate)
	appendRec(t, r, "u2", "n2", models.OpCreate)

	require.NoError(t, r.Clear(ctx, "u1"))

	n, err := r.CountPending(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.CountPending(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNopRepository_AlwaysEmpty(t *testing.T) {
	r := NewNopRepository()
	ctx := context.Background()

	seq, err := r.Append(ctx, &models.MutationRecord{UserID: "u1", EntityID: "n1", Op: models.OpCreate})
	require.NoError(t, err)
	assert.Zero(t, seq)

	_, err = r.PeekNext(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	n, err := r.CountPending(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
