package notes

import (
	"context"

	"github.com/inkwell-notes/inkwell/internal/client/models"
)

// Filter narrows List results. Zero-value fields are ignored, except UserID
// which is always required.
type Filter struct {
	// UserID scopes the listing to one account.
	UserID string

	// FolderID, when non-nil, restricts results to notes in that folder.
	FolderID *string

	// Unfiled restricts results to notes without a folder. Mutually
	// exclusive with FolderID; FolderID wins if both are set.
	Unfiled bool

	// Archived, when non-nil, filters by the archived flag.
	Archived *bool
}

// Repository describes the local reservoir of note records.
// Implementations are backed by a local SQLite database and never touch the
// network; reads and writes succeed or fail purely on local-durability
// grounds.
type Repository interface {
	// Get returns a note by id. Ids rewritten during identity-rebase are
	// transparently redirected to the canonical record.
	// Returns common.ErrNotFound if no note matches.
	Get(ctx context.Context, userID, id string) (*models.Note, error)

	// List returns notes matching the filter, newest first by UpdatedAt.
	List(ctx context.Context, f Filter) ([]models.Note, error)

	// Put upserts a note (full replace by id).
	Put(ctx context.Context, n *models.Note) error

	// Delete removes a note row. Deleting a missing id is not an error.
	Delete(ctx context.Context, userID, id string) error

	// Rebase rewrites a note row from a client-generated id to the
	// server-assigned canonical id and records a redirect so the old id
	// keeps resolving.
	Rebase(ctx context.Context, userID, oldID, newID string) error

	// Clear removes all notes and alias redirects for the user. Used only
	// on explicit cache-clear, never on ordinary sign-out.
	Clear(ctx context.Context, userID string) error
}
