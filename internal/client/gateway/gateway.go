// Package gateway defines the contract with the hosted database service and
// its REST row-level implementation.
//
// The gateway is the only component of the client that talks to the network.
// Local CRUD never goes through it directly while offline support is enabled;
// the sync engine replays queued mutations against it and pulls remote deltas
// from it.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkwell-notes/inkwell/internal/client/models"
)

// ErrNetworkUnavailable marks a transient transport failure (connection
// refused, DNS failure, timeout). Retryable: the drain halts and the
// connectivity monitor triggers it again later. Never surfaced to the user.
var ErrNetworkUnavailable = errors.New("network unavailable")

// ErrNotFound means the target entity no longer exists remotely. Treated as
// already-applied: the corresponding mutation is acknowledged without
// touching the local store.
var ErrNotFound = errors.New("remote entity not found")

// RejectedError marks a write the remote store refused (validation, schema
// mismatch). Not retryable without local correction; surfaced as a sticky
// per-entity sync error.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected: %s", e.Reason)
}

// Capabilities describes what the remote schema supports. Negotiated once
// per session instead of per-call fallback querying.
type Capabilities struct {
	// ArchivedFilter is true when the remote schema has the is_archived
	// column. When false, archived-state filtering degrades to client-side
	// filtering and the field is omitted from pushes.
	ArchivedFilter bool

	// Folders is true when the remote schema has the folder_id column.
	Folders bool
}

// Gateway is the remote store contract consumed by the sync engine.
//
// Push and PullSince may block on network I/O and are bounded by a per-call
// timeout; on expiry they return ErrNetworkUnavailable.
type Gateway interface {
	// PullSince returns authoritative remote records changed since cursor
	// (a logical updated_at watermark) together with the next cursor value.
	PullSince(ctx context.Context, userID string, cursor int64) ([]models.Note, int64, error)

	// Push applies one operation to the remote store and returns the
	// canonical record, which may carry a server-assigned id on Create.
	// Delete returns (nil, nil) on success.
	Push(ctx context.Context, op models.Operation, n models.Note) (*models.Note, error)

	// Capabilities reports the negotiated remote schema capabilities.
	Capabilities(ctx context.Context) (Capabilities, error)

	// Ping probes reachability of the remote store.
	Ping(ctx context.Context) error
}
