package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-notes/inkwell/internal/client/gateway"
	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/client/storage"
	"github.com/inkwell-notes/inkwell/internal/client/sync"
	"github.com/inkwell-notes/inkwell/internal/common"
	"github.com/inkwell-notes/inkwell/internal/logging"

	_ "modernc.org/sqlite"
)

// offlineGateway never reaches the network, so background drains halt
// silently and every write stays queued locally.
type offlineGateway struct{}

func (offlineGateway) Push(ctx context.Context, op models.Operation, n models.Note) (*models.Note, error) {
	return nil, gateway.ErrNetworkUnavailable
}

func (offlineGateway) PullSince(ctx context.Context, userID string, cursor int64) ([]models.Note, int64, error) {
	return nil, cursor, gateway.ErrNetworkUnavailable
}

func (offlineGateway) Capabilities(ctx context.Context) (gateway.Capabilities, error) {
	return gateway.Capabilities{}, gateway.ErrNetworkUnavailable
}

func (offlineGateway) Ping(ctx context.Context) error { return gateway.ErrNetworkUnavailable }

func setupService(t *testing.T) (NoteService, *storage.Storage, *sync.Engine) {
	t.Helper()
	ctx := context.Background()

	st, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := logging.NewDiscard()
	eng := sync.New("u1", st, offlineGateway{}, sync.NewClock(), logger)
	return NewNoteService("u1", st, eng, logger), st, eng
}

func TestCreate_OptimisticLocalWriteAndQueuedMutation(t *testing.T) {
	svc, _, eng := setupService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, "groceries", "milk", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(n.ID, models.LocalIDPrefix))
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)

	// readable immediately, before any sync happened
	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Title)

	status, err := eng.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.PendingCount)
}

func TestCreate_NormalizesDefaultFolderSentinel(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	folder := models.DefaultFolderID
	n, err := svc.Create(ctx, "a", "b", &folder)
	require.NoError(t, err)
	assert.Nil(t, n.FolderID)

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)
}

func TestUpdate_StampsNewUpdatedAt(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, "a", "b", nil)
	require.NoError(t, err)

	upd, err := svc.Update(ctx, n.ID, "a2", "b2", nil)
	require.NoError(t, err)
	assert.Greater(t, upd.UpdatedAt, n.UpdatedAt)
	assert.Equal(t, n.CreatedAt, upd.CreatedAt)

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Title)
}

func TestUpdate_MissingNote(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Update(context.Background(), "nope", "t", "c", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestArchiveRestore_TogglesFlagLocally(t *testing.T) {
	svc, _, eng := setupService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, "a", "b", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, n.ID))
	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	require.NoError(t, svc.Restore(ctx, n.ID))
	got, err = svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, got.IsArchived)

	status, err := eng.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.PendingCount)
}

func TestList_FiltersByArchivedAndFolder(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	work := "folder-work"
	_, err := svc.Create(ctx, "inbox note", "", nil)
	require.NoError(t, err)
	filed, err := svc.Create(ctx, "work note", "", &work)
	require.NoError(t, err)
	archived, err := svc.Create(ctx, "old note", "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, archived.ID))

	active := false
	rows, err := svc.List(ctx, ListOptions{Archived: &active})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.List(ctx, ListOptions{FolderID: &work})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, filed.ID, rows[0].ID)

	rows, err = svc.List(ctx, ListOptions{Unfiled: true})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDelete_RemovesLocallyAndQueues(t *testing.T) {
	svc, _, eng := setupService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, "a", "b", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, n.ID))

	_, err = svc.Get(ctx, n.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	status, err := eng.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.PendingCount, "create and delete both queued for replay")
}

func TestUpdate_UpdatedAtAdvancesPastStoredValue(t *testing.T) {
	svc, st, _ := setupService(t)
	ctx := context.Background()

	// a row stamped well ahead of the wall clock, as after a restart with
	// a backwards-stepped clock
	ahead := time.Now().Add(24*time.Hour).UnixMilli()
	stale := &models.Note{
		ID: "n1", UserID: "u1", Title: "a", Content: "b",
		CreatedAt: ahead, UpdatedAt: ahead,
	}
	require.NoError(t, st.Notes.Put(ctx, stale))

	n, err := svc.Update(ctx, "n1", "a2", "b2", nil)
	require.NoError(t, err)
	assert.Greater(t, n.UpdatedAt, ahead, "updated_at must strictly increase")

	require.NoError(t, svc.Archive(ctx, "n1"))
	archived, err := svc.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Greater(t, archived.UpdatedAt, n.UpdatedAt)
}

func TestClearCache_WipesReservoirLogAndCursor(t *testing.T) {
	svc, st, eng := setupService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, "a", "b", nil)
	require.NoError(t, err)
	require.NoError(t, st.Metadata.Set(ctx, sync.CursorKey("u1"), []byte("42")))

	require.NoError(t, svc.ClearCache(ctx))

	_, err = svc.Get(ctx, n.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	status, err := eng.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.PendingCount)

	// the next drain must re-pull from scratch
	cursor, err := st.Metadata.Get(ctx, sync.CursorKey("u1"))
	require.NoError(t, err)
	assert.Nil(t, cursor)
}
