package mutations

import (
	"context"

	"github.com/inkwell-notes/inkwell/internal/client/models"
)

// Repository describes the durable, ordered mutation log.
//
// Lifecycle of a record: Append (pending) -> MarkInFlight -> MarkDone
// (removed) on acknowledgment, MarkPending on a network halt, or MarkFailed
// on rejection. At most one record per entity may be in flight at a time;
// a failed record blocks the rest of its entity's line until Retry.
type Repository interface {
	// Append durably enqueues a new pending record and returns its sequence.
	Append(ctx context.Context, rec *models.MutationRecord) (int64, error)

	// PeekNext returns the lowest-sequence pending record whose entity has
	// no in-flight and no failed record ahead of it. Returns
	// common.ErrNotFound when no such record exists.
	PeekNext(ctx context.Context, userID string) (*models.MutationRecord, error)

	// MarkInFlight transitions a record to in-flight and bumps its attempt
	// counter.
	MarkInFlight(ctx context.Context, seq int64) error

	// MarkPending reverts an in-flight record to pending. Used when a drain
	// halts on a transient network failure.
	MarkPending(ctx context.Context, seq int64) error

	// MarkDone removes the record: the remote store acknowledged the write.
	MarkDone(ctx context.Context, seq int64) error

	// MarkFailed records a rejection reason and parks the record.
	MarkFailed(ctx context.Context, seq int64, reason string) error

	// Retry reverts all failed records for the entity back to pending so the
	// next drain picks them up again.
	Retry(ctx context.Context, userID, entityID string) error

	// CountPending returns the number of records not yet acknowledged
	// (pending, in-flight and failed alike).
	CountPending(ctx context.Context, userID string) (int, error)

	// ListPendingEntities returns the distinct entity ids with unacknowledged
	// records, in first-enqueued order.
	ListPendingEntities(ctx context.Context, userID string) ([]string, error)

	// ListFailed returns all failed records for the user, for sticky
	// per-entity error reporting.
	ListFailed(ctx context.Context, userID string) ([]models.MutationRecord, error)

	// HasPending reports whether the entity has any unacknowledged records.
	// The sync engine consults it when merging remote pulls: pending local
	// intent always wins over a concurrent remote read.
	HasPending(ctx context.Context, userID, entityID string) (bool, error)

	// RebaseEntity rewrites queued records (and their note payloads) from a
	// client-generated id to the server-assigned canonical id.
	RebaseEntity(ctx context.Context, userID, oldID, newID string) error

	// Clear removes all records for the user. Explicit cache-clear only.
	Clear(ctx context.Context, userID string) error
}
