package sync

import "context"

// Status is the externally visible synchronization state: how many local
// edits still await acknowledgment and whether a drain is in progress. It is
// derived from the mutation log, never stored.
type Status struct {
	PendingCount int
	IsSyncing    bool
}

// Status reports the current pending count and drain state for the engine's
// user. PendingCount counts every unacknowledged mutation record, including
// failed ones.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	n, err := e.st.Mutations.CountPending(ctx, e.userID)
	if err != nil {
		return Status{}, err
	}
	return Status{PendingCount: n, IsSyncing: e.draining.Load()}, nil
}

// UnsyncedEntityIDs returns the ids of entities with unacknowledged local
// mutations, without exposing the queue structure.
func (e *Engine) UnsyncedEntityIDs(ctx context.Context) ([]string, error) {
	return e.st.Mutations.ListPendingEntities(ctx, e.userID)
}

// EntityErrors returns the sticky per-entity sync errors: rejection reasons
// that persist until the user retries or the entity's queue is cleared.
func (e *Engine) EntityErrors(ctx context.Context) (map[string]string, error) {
	failed, err := e.st.Mutations.ListFailed(ctx, e.userID)
	if err != nil {
		return nil, err
	}
	if len(failed) == 0 {
		return nil, nil
	}
	errs := make(map[string]string, len(failed))
	for _, rec := range failed {
		if _, ok := errs[rec.EntityID]; !ok {
			errs[rec.EntityID] = rec.FailReason
		}
	}
	return errs, nil
}

// Retry releases a parked entity line so the next drain replays it from the
// rejected record onward.
func (e *Engine) Retry(ctx context.Context, entityID string) error {
	return e.st.Mutations.Retry(ctx, e.userID, entityID)
}
