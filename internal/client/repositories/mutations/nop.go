package mutations

import (
	"context"

	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/common"
)

// NopRepository short-circuits the mutation log on platforms where offline
// support is disabled: appends succeed without persisting anything, the queue
// is always empty and the pending count is always zero. All reads and writes
// pass straight through to the remote gateway on such platforms, so there is
// nothing to replay.
type NopRepository struct{}

var _ Repository = NopRepository{}

func NewNopRepository() *NopRepository { return &NopRepository{} }

func (NopRepository) Append(ctx context.Context, rec *models.MutationRecord) (int64, error) {
	return 0, nil
}

func (NopRepository) PeekNext(ctx context.Context, userID string) (*models.MutationRecord, error) {
	return nil, common.ErrNotFound
}

func (NopRepository) MarkInFlight(ctx context.Context, seq int64) error { return nil }

func (NopRepository) MarkPending(ctx context.Context, seq int64) error { return nil }

func (NopRepository) MarkDone(ctx context.Context, seq int64) error { return nil }

func (NopRepository) MarkFailed(ctx context.Context, seq int64, reason string) error { return nil }

func (NopRepository) Retry(ctx context.Context, userID, entityID string) error { return nil }

func (NopRepository) CountPending(ctx context.Context, userID string) (int, error) { return 0, nil }

func (NopRepository) ListPendingEntities(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (NopRepository) ListFailed(ctx context.Context, userID string) ([]models.MutationRecord, error) {
	return nil, nil
}

func (NopRepository) HasPending(ctx context.Context, userID, entityID string) (bool, error) {
	return false, nil
}

func (NopRepository) RebaseEntity(ctx context.Context, userID, oldID, newID string) error {
	return nil
}

func (NopRepository) Clear(ctx context.Context, userID string) error { return nil }
