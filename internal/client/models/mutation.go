package models

import "encoding/json"

// Operation identifies the kind of pending write a mutation record carries.
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpArchive Operation = "archive"
	OpRestore Operation = "restore"
	OpDelete  Operation = "delete"
)

// MutationStatus is the lifecycle state of a mutation record.
type MutationStatus string

const (
	// StatusPending marks a record waiting for its turn in a drain.
	StatusPending MutationStatus = "pending"
	// StatusInFlight marks the single record per entity currently being
	// pushed to the remote store.
	StatusInFlight MutationStatus = "inflight"
	// StatusFailed marks a record the remote store rejected; it blocks the
	// rest of its entity's line until the user retries or clears it.
	StatusFailed MutationStatus = "failed"
)

// MutationRecord is one durable pending write in the mutation log. Records
// for the same entity are replayed strictly in Sequence order because later
// mutations may depend on fields set by earlier ones.
type MutationRecord struct {
	// Sequence is a strictly increasing local counter defining replay order.
	Sequence int64

	// UserID scopes the record to an account.
	UserID string

	// EntityID is the id of the note this mutation targets.
	EntityID string

	// Op is the operation kind.
	Op Operation

	// Payload is the operation-specific field set, typically the serialized
	// Note snapshot taken when the mutation was accepted locally.
	Payload json.RawMessage

	// EnqueuedAt is the logical timestamp at which the record was appended.
	EnqueuedAt int64

	// AttemptCount counts push attempts across drains.
	AttemptCount int

	// Status is the current lifecycle state. Done records are removed from
	// the log rather than stored.
	Status MutationStatus

	// FailReason holds the rejection reason for StatusFailed records.
	FailReason string
}

// NotePayload encodes a note snapshot as a mutation payload.
func NotePayload(n Note) (json.RawMessage, error) {
	return json.Marshal(n)
}

// DecodeNotePayload decodes a mutation payload back into a note snapshot.
func DecodeNotePayload(payload json.RawMessage) (Note, error) {
	var n Note
	err := json.Unmarshal(payload, &n)
	return n, err
}
