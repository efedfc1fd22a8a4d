package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/inkwell-notes/inkwell/internal/client/gateway"
	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/client/storage"
	"github.com/inkwell-notes/inkwell/internal/common"
	"github.com/inkwell-notes/inkwell/internal/dbx"
	"github.com/inkwell-notes/inkwell/internal/logging"
)

// CursorKey returns the metadata key under which userID's remote pull
// cursor is persisted.
func CursorKey(userID string) string { return "pull_cursor:" + userID }

// Engine reconciles the local reservoir with the remote store. One Engine is
// constructed per signed-in session and torn down on sign-out; it owns the
// reservoir and the mutation log for the duration of a drain cycle.
type Engine struct {
	userID string
	st     *storage.Storage
	gw     gateway.Gateway
	clock  *Clock
	logger logging.Logger

	draining atomic.Bool
}

// New returns an Engine for the given user.
func New(userID string, st *storage.Storage, gw gateway.Gateway, clock *Clock, logger logging.Logger) *Engine {
	return &Engine{
		userID: userID,
		st:     st,
		gw:     gw,
		clock:  clock,
		logger: logger,
	}
}

// Clock exposes the engine's logical clock for the write path.
func (e *Engine) Clock() *Clock { return e.clock }

// Drain runs one reconciliation cycle: replay the mutation log, then pull
// and merge remote deltas. Single-flight: a call while another drain is
// running returns immediately without doing anything.
//
// Transient network failures halt the drain silently (the connectivity
// monitor will trigger another one); they are never returned to the caller.
func (e *Engine) Drain(ctx context.Context) error {
	if !e.draining.CompareAndSwap(false, true) {
		return nil
	}
	defer e.draining.Store(false)

	pulled := false
	for {
		rec, err := e.st.Mutations.PeekNext(ctx, e.userID)
		if errors.Is(err, common.ErrNotFound) {
			if pulled {
				return nil
			}
			if err := e.pull(ctx); err != nil {
				if errors.Is(err, gateway.ErrNetworkUnavailable) {
					e.logger.Warn(ctx, "remote pull unavailable, drain halted")
					return nil
				}
				return err
			}
			// Re-check the log: local writes may have landed during the pull.
			pulled = true
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to peek mutation log: %w", err)
		}

		halt, err := e.pushOne(ctx, rec)
		if err != nil {
			return err
		}
		if halt {
			return nil
		}
	}
}

// pushOne replays a single mutation record. It returns halt=true when the
// whole drain must stop (transient network failure).
func (e *Engine) pushOne(ctx context.Context, rec *models.MutationRecord) (bool, error) {
	if err := e.st.Mutations.MarkInFlight(ctx, rec.Sequence); err != nil {
		return false, fmt.Errorf("failed to mark mutation in flight: %w", err)
	}

	n, err := models.DecodeNotePayload(rec.Payload)
	if err != nil {
		// A corrupt payload can never be replayed; park it like a rejection.
		reason := fmt.Sprintf("corrupt payload: %v", err)
		if err := e.st.Mutations.MarkFailed(ctx, rec.Sequence, reason); err != nil {
			return false, err
		}
		e.logger.Error(ctx, "mutation payload corrupt", "seq", rec.Sequence, "entity", rec.EntityID)
		return false, nil
	}

	canonical, pushErr := e.gw.Push(ctx, rec.Op, n)

	var rejected *gateway.RejectedError
	switch {
	case errors.Is(pushErr, gateway.ErrNetworkUnavailable):
		// Leave the record pending; the next connectivity edge retries it.
		if err := e.st.Mutations.MarkPending(ctx, rec.Sequence); err != nil {
			return false, err
		}
		e.logger.Warn(ctx, "push unavailable, drain halted",
			"entity", rec.EntityID, "attempt", rec.AttemptCount+1)
		return true, nil

	case errors.As(pushErr, &rejected):
		if err := e.st.Mutations.MarkFailed(ctx, rec.Sequence, rejected.Reason); err != nil {
			return false, err
		}
		e.logger.Info(ctx, "push rejected",
			"entity", rec.EntityID, "op", rec.Op, "reason", rejected.Reason)
		return false, nil

	case errors.Is(pushErr, gateway.ErrNotFound):
		// The entity is gone remotely. The mutation is acknowledged as
		// already applied; the local copy stays untouched and shows up as
		// orphaned-local rather than being silently deleted, because a
		// pending Create race is indistinguishable from a remote delete.
		if err := e.st.Mutations.MarkDone(ctx, rec.Sequence); err != nil {
			return false, err
		}
		e.logger.Info(ctx, "remote entity absent, mutation dropped",
			"entity", rec.EntityID, "op", rec.Op)
		return false, nil

	case pushErr != nil:
		if err := e.st.Mutations.MarkPending(ctx, rec.Sequence); err != nil {
			return false, err
		}
		return true, fmt.Errorf("unexpected push failure: %w", pushErr)
	}

	if canonical != nil {
		e.clock.Observe(canonical.UpdatedAt)
	}

	// The ack bookkeeping commits as one unit: a crash must never leave the
	// record done while queued siblings still reference a pre-rebase id.
	err = dbx.WithTx(ctx, e.st.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := e.st.Mutations.WithTx(tx).MarkDone(ctx, rec.Sequence); err != nil {
			return err
		}
		if canonical == nil {
			// Delete acknowledged; the reservoir row was already removed on
			// the optimistic write path.
			return nil
		}
		if canonical.ID != rec.EntityID {
			// Identity-rebase: queued records may still reference the
			// client-generated id and must follow the canonical one before
			// the drain continues with this entity's line.
			if err := e.st.Mutations.WithTx(tx).RebaseEntity(ctx, e.userID, rec.EntityID, canonical.ID); err != nil {
				return err
			}
			if err := e.st.Notes.WithTx(tx).Rebase(ctx, e.userID, rec.EntityID, canonical.ID); err != nil {
				return err
			}
		}
		return e.st.Notes.WithTx(tx).Put(ctx, canonical)
	})
	if err != nil {
		return false, fmt.Errorf("failed to acknowledge mutation: %w", err)
	}

	if canonical != nil && canonical.ID != rec.EntityID {
		e.logger.Debug(ctx, "identity rebased", "old", rec.EntityID, "new", canonical.ID)
	}
	return false, nil
}

// pull fetches remote deltas since the persisted cursor and merges them.
// Entities with queued local mutations are deferred: the cursor is held back
// so their remote rows are pulled again once the local queue drains.
func (e *Engine) pull(ctx context.Context) error {
	cursor, err := e.loadCursor(ctx)
	if err != nil {
		return err
	}

	rows, next, err := e.gw.PullSince(ctx, e.userID, cursor)
	if err != nil {
		return err
	}

	deferredFloor := int64(0)
	merged := 0
	for _, remote := range rows {
		remote := remote

		pending, err := e.st.Mutations.HasPending(ctx, e.userID, remote.ID)
		if err != nil {
			return err
		}
		if pending {
			// Pending local intent wins; re-pull this row next drain.
			if deferredFloor == 0 || remote.UpdatedAt < deferredFloor {
				deferredFloor = remote.UpdatedAt
			}
			e.logger.Debug(ctx, "remote row deferred behind local queue", "entity", remote.ID)
			continue
		}

		local, err := e.st.Notes.Get(ctx, e.userID, remote.ID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			// New remote entity.
		case err != nil:
			return err
		case local.UpdatedAt >= remote.UpdatedAt:
			continue
		}

		if err := e.st.Notes.Put(ctx, &remote); err != nil {
			return fmt.Errorf("failed to merge remote note: %w", err)
		}
		e.clock.Observe(remote.UpdatedAt)
		merged++
	}

	if deferredFloor > 0 && deferredFloor-1 < next {
		next = deferredFloor - 1
	}
	if next != cursor {
		if err := e.saveCursor(ctx, next); err != nil {
			return err
		}
	}

	e.logger.Debug(ctx, "remote pull merged", "rows", len(rows), "merged", merged, "cursor", next)
	return nil
}

func (e *Engine) loadCursor(ctx context.Context) (int64, error) {
	v, err := e.st.Metadata.Get(ctx, CursorKey(e.userID))
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt pull cursor: %w", err)
	}
	return cursor, nil
}

func (e *Engine) saveCursor(ctx context.Context, cursor int64) error {
	return e.st.Metadata.Set(ctx, CursorKey(e.userID), []byte(strconv.FormatInt(cursor, 10)))
}
