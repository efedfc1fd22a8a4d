// Package services implements the client-facing note operations on top of
// the local reservoir and the sync engine. Writes are applied optimistically:
// the reservoir row and the mutation-log record are committed together, then
// a drain is triggered in the background.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/client/repositories/notes"
	"github.com/inkwell-notes/inkwell/internal/client/storage"
	"github.com/inkwell-notes/inkwell/internal/client/sync"
	"github.com/inkwell-notes/inkwell/internal/dbx"
	"github.com/inkwell-notes/inkwell/internal/logging"
)

// ListOptions narrows List results at the service boundary.
type ListOptions struct {
	FolderID *string
	Unfiled  bool
	Archived *bool
}

type NoteService interface {
	Create(ctx context.Context, title, content string, folderID *string) (*models.Note, error)
	Update(ctx context.Context, id, title, content string, folderID *string) (*models.Note, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context, opts ListOptions) ([]models.Note, error)
	ClearCache(ctx context.Context) error
}

type noteService struct {
	userID string
	st     *storage.Storage
	engine *sync.Engine
	logger logging.Logger
}

// NewNoteService returns the offline-capable service: reads come from the
// local reservoir, writes are queued and drained by the engine.
func NewNoteService(userID string, st *storage.Storage, engine *sync.Engine, logger logging.Logger) NoteService {
	return &noteService{userID: userID, st: st, engine: engine, logger: logger}
}

// write commits the reservoir change and the mutation record atomically, then
// kicks a background drain. A drain while offline halts silently, so the
// trigger is unconditional.
func (s *noteService) write(ctx context.Context, op models.Operation, n models.Note) error {
	payload, err := models.NotePayload(n)
	if err != nil {
		return fmt.Errorf("failed to encode mutation payload: %w", err)
	}

	err = dbx.WithTx(ctx, s.st.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if op == models.OpDelete {
			if err := s.st.Notes.WithTx(tx).Delete(ctx, n.UserID, n.ID); err != nil {
				return err
			}
		} else {
			if err := s.st.Notes.WithTx(tx).Put(ctx, &n); err != nil {
				return err
			}
		}
		_, err := s.st.Mutations.WithTx(tx).Append(ctx, &models.MutationRecord{
			UserID:     n.UserID,
			EntityID:   n.ID,
			Op:         op,
			Payload:    payload,
			EnqueuedAt: n.UpdatedAt,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}

	go func() {
		if err := s.engine.Drain(context.Background()); err != nil {
			s.logger.Error(context.Background(), "background sync failed", "error", err)
		}
	}()
	return nil
}

// stamp issues the next logical timestamp for an edit of cur. The stored
// value seeds the clock first, so updated_at keeps strictly increasing even
// when the process restarted with a wall clock behind the last edit.
func (s *noteService) stamp(cur *models.Note) int64 {
	clk := s.engine.Clock()
	clk.Observe(cur.UpdatedAt)
	return clk.Next()
}

func (s *noteService) Create(ctx context.Context, title, content string, folderID *string) (*models.Note, error) {
	now := s.engine.Clock().Next()
	n := models.Note{
		ID:        models.LocalIDPrefix + uuid.NewString(),
		UserID:    s.userID,
		Title:     title,
		Content:   content,
		FolderID:  models.NormalizeFolder(folderID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.write(ctx, models.OpCreate, n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *noteService) Update(ctx context.Context, id, title, content string, folderID *string) (*models.Note, error) {
	cur, err := s.st.Notes.Get(ctx, s.userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}

	n := *cur
	n.Title = title
	n.Content = content
	n.FolderID = models.NormalizeFolder(folderID)
	n.UpdatedAt = s.stamp(cur)

	if err := s.write(ctx, models.OpUpdate, n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *noteService) Archive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

func (s *noteService) Restore(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

func (s *noteService) setArchived(ctx context.Context, id string, archived bool) error {
	cur, err := s.st.Notes.Get(ctx, s.userID, id)
	if err != nil {
		return fmt.Errorf("failed to load note: %w", err)
	}

	n := *cur
	n.IsArchived = archived
	n.UpdatedAt = s.stamp(cur)

	op := models.OpArchive
	if !archived {
		op = models.OpRestore
	}
	return s.write(ctx, op, n)
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	cur, err := s.st.Notes.Get(ctx, s.userID, id)
	if err != nil {
		return fmt.Errorf("failed to load note: %w", err)
	}

	n := *cur
	n.UpdatedAt = s.stamp(cur)
	return s.write(ctx, models.OpDelete, n)
}

func (s *noteService) Get(ctx context.Context, id string) (*models.Note, error) {
	return s.st.Notes.Get(ctx, s.userID, id)
}

func (s *noteService) List(ctx context.Context, opts ListOptions) ([]models.Note, error) {
	return s.st.Notes.List(ctx, notes.Filter{
		UserID:   s.userID,
		FolderID: models.NormalizeFolder(opts.FolderID),
		Unfiled:  opts.Unfiled,
		Archived: opts.Archived,
	})
}

// ClearCache wipes the user's local reservoir, mutation log and pull cursor.
// Queued unsynced edits are lost; callers confirm with the user first.
func (s *noteService) ClearCache(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.st.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.st.Notes.WithTx(tx).Clear(ctx, s.userID); err != nil {
			return err
		}
		if err := s.st.Mutations.WithTx(tx).Clear(ctx, s.userID); err != nil {
			return err
		}
		return s.st.Metadata.WithTx(tx).Delete(ctx, sync.CursorKey(s.userID))
	})
	if err != nil {
		return fmt.Errorf("failed to clear local cache: %w", err)
	}
	return nil
}
