package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkwell-notes/inkwell/internal/client/gateway"
	"github.com/inkwell-notes/inkwell/internal/client/models"
	"github.com/inkwell-notes/inkwell/internal/common"
)

// passthroughService backs platforms where offline support is disabled.
// There is no reservoir and no mutation log: every read and write goes
// straight to the remote store, and a network failure is the caller's
// problem.
type passthroughService struct {
	userID string
	gw     gateway.Gateway
	clock  interface{ Next() int64 }
}

// NewPassthroughService returns a NoteService that talks directly to the
// remote store. pendingCount for such a session is always zero.
func NewPassthroughService(userID string, gw gateway.Gateway, clock interface{ Next() int64 }) NoteService {
	return &passthroughService{userID: userID, gw: gw, clock: clock}
}

func (s *passthroughService) Create(ctx context.Context, title, content string, folderID *string) (*models.Note, error) {
	now := s.clock.Next()
	n := models.Note{
		ID:        models.LocalIDPrefix + uuid.NewString(),
		UserID:    s.userID,
		Title:     title,
		Content:   content,
		FolderID:  models.NormalizeFolder(folderID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	canonical, err := s.gw.Push(ctx, models.OpCreate, n)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return canonical, nil
}

func (s *passthroughService) Update(ctx context.Context, id, title, content string, folderID *string) (*models.Note, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	n := *cur
	n.Title = title
	n.Content = content
	n.FolderID = models.NormalizeFolder(folderID)
	n.UpdatedAt = s.clock.Next()

	canonical, err := s.gw.Push(ctx, models.OpUpdate, n)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return canonical, nil
}

func (s *passthroughService) Archive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

func (s *passthroughService) Restore(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

func (s *passthroughService) setArchived(ctx context.Context, id string, archived bool) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	n := *cur
	n.IsArchived = archived
	n.UpdatedAt = s.clock.Next()

	op := models.OpArchive
	if !archived {
		op = models.OpRestore
	}
	if _, err := s.gw.Push(ctx, op, n); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

func (s *passthroughService) Delete(ctx context.Context, id string) error {
	n := models.Note{ID: id, UserID: s.userID, UpdatedAt: s.clock.Next()}
	if _, err := s.gw.Push(ctx, models.OpDelete, n); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (s *passthroughService) Get(ctx context.Context, id string) (*models.Note, error) {
	rows, _, err := s.gw.PullSince(ctx, s.userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, common.ErrNotFound
}

// List pulls the user's rows and filters them client-side. The remote
// archived filter is not relied on here, so a schema without is_archived
// behaves identically.
func (s *passthroughService) List(ctx context.Context, opts ListOptions) ([]models.Note, error) {
	rows, _, err := s.gw.PullSince(ctx, s.userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	folder := models.NormalizeFolder(opts.FolderID)
	out := rows[:0]
	for _, n := range rows {
		if folder != nil && (n.FolderID == nil || *n.FolderID != *folder) {
			continue
		}
		if folder == nil && opts.Unfiled && n.FolderID != nil {
			continue
		}
		if opts.Archived != nil && n.IsArchived != *opts.Archived {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// ClearCache is a no-op: there is no local cache in passthrough mode.
func (s *passthroughService) ClearCache(ctx context.Context) error {
	return nil
}
