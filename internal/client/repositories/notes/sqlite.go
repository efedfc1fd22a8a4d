package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

// Get returns a note by id, following at most one alias redirect for ids
// rewritten during identity-rebase.
func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	n, err := r.get(ctx, userID, id)
	if !errors.Is(err, common.ErrNotFound) {
		return n, err
	}

	// Not found directly: the id may have been rebased to a canonical one.
	var canonical string
	err = r.db.QueryRowContext(ctx,
		`SELECT new_id FROM note_aliases WHERE user_id = ? AND old_id = ?`,
		userID, id).Scan(&canonical)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve note alias: %w", err)
	}
	return r.get(ctx, userID, canonical)
}

func (r *SQLiteRepository) get(ctx context.Context, userID, id string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, content, folder_id, is_archived, created_at, updated_at
		FROM notes WHERE user_id = ? AND id = ?`, userID, id)

	n, err := scanNote(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

// List returns notes matching the filter, ordered by updated_at desc.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]models.Note, error) {
	var (
		conds = []string{"user_id = ?"}
		args  = []any{f.UserID}
	)

	switch {
	case f.FolderID != nil:
		conds = append(conds, "folder_id = ?")
		args = append(args, *f.FolderID)
	case f.Unfiled:
		conds = append(conds, "folder_id IS NULL")
	}
	if f.Archived != nil {
		conds = append(conds, "is_archived = ?")
		args = append(args, boolToInt(*f.Archived))
	}

	query := `
		SELECT id, user_id, title, content, folder_id, is_archived, created_at, updated_at
		FROM notes WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Put upserts a note by id; all columns are replaced on conflict.
func (r *SQLiteRepository) Put(ctx context.Context, n *models.Note) error {
	query := `INSERT INTO notes (id, user_id, title, content, folder_id, is_archived, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				title = excluded.title,
				content = excluded.content,
				folder_id = excluded.folder_id,
				is_archived = excluded.is_archived,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Content, folderArg(n.FolderID),
		boolToInt(n.IsArchived), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// Delete removes the note row. Missing ids are tolerated: the row may
// already have been replaced by a remote pull or a rebase.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// Rebase rewrites the note row to the canonical id and records the redirect.
func (r *SQLiteRepository) Rebase(ctx context.Context, userID, oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE notes SET id = ? WHERE user_id = ? AND id = ?`, newID, userID, oldID)
	if err != nil {
		return fmt.Errorf("failed to rebase note id: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO note_aliases (user_id, old_id, new_id) VALUES (?, ?, ?)
		ON CONFLICT(old_id) DO UPDATE SET new_id = excluded.new_id
	`, userID, oldID, newID)
	if err != nil {
		return fmt.Errorf("failed to record note alias: %w", err)
	}

	// Chained redirects collapse to the newest canonical id.
	_, err = r.db.ExecContext(ctx,
		`UPDATE note_aliases SET new_id = ? WHERE user_id = ? AND new_id = ?`,
		newID, userID, oldID)
	if err != nil {
		return fmt.Errorf("failed to collapse note aliases: %w", err)
	}
	return nil
}

// Clear removes all notes and aliases for the user.
func (r *SQLiteRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM note_aliases WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear note aliases: %w", err)
	}
	return nil
}

func scanNote(scan func(dest ...any) error) (*models.Note, error) {
	var (
		n        models.Note
		folder   sql.NullString
		archived int
	)
	if err := scan(&n.ID, &n.UserID, &n.Title, &n.Content, &folder, &archived,
		&n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if folder.Valid {
		n.FolderID = &folder.String
	}
	n.IsArchived = archived != 0
	return &n, nil
}

func folderArg(folderID *string) any {
	if folderID == nil {
		return nil
	}
	return *folderID
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
