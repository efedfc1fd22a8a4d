package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/inkwell-notes/inkwell/internal/client/services"
	"github.com/inkwell-notes/inkwell/internal/common"
)

var errNotSignedIn = errors.New("not signed in")

// listOptionsActive lists non-archived notes, the default view.
func listOptionsActive() services.ListOptions {
	active := false
	return services.ListOptions{Archived: &active}
}

func (a *App) requireSession() error {
	if !a.isSignedIn() {
		printlnFn("Sign in first ('signin').")
		return errNotSignedIn
	}
	return nil
}

func (a *App) Add(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	title, err := GetSimpleText(a.reader, "- Enter title", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	content, err := GetMultiline(a.reader, "- Enter note text:", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	folder, err := GetSimpleText(a.reader, "- Folder (empty for unfiled)", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	var folderID *string
	if folder != "" {
		folderID = &folder
	}

	n, err := a.svc.Create(ctx, title, content, folderID)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	printlnFn("Created", n.ID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	rows, err := a.svc.List(ctx, listOptionsActive())
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	if len(rows) == 0 {
		printlnFn("No notes.")
		return nil
	}

	unsynced := a.unsyncedSet(ctx)
	for _, n := range rows {
		marker := ""
		if _, ok := unsynced[n.ID]; ok {
			marker = " " + offlineColor("*")
		}
		folder := ""
		if n.FolderID != nil {
			folder = "  [" + *n.FolderID + "]"
		}
		printlnFn(fmt.Sprintf("%s  %s%s%s", n.ID, n.Title, folder, marker))
	}
	return nil
}

func (a *App) Show(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "Enter note id", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	n, err := a.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such note:", id)
		} else {
			printlnFn(errorColor("error:"), err)
		}
		return err
	}

	printlnFn("Title:  ", n.Title)
	if n.FolderID != nil {
		printlnFn("Folder: ", *n.FolderID)
	}
	if n.IsArchived {
		printlnFn("State:  ", "archived")
	}
	printlnFn(n.Content)
	return nil
}

func (a *App) Edit(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "Enter note id", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	cur, err := a.svc.Get(ctx, id)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	title, err := GetSimpleText(a.reader, fmt.Sprintf("- Title [%s]", cur.Title), os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	if title == "" {
		title = cur.Title
	}

	content, err := GetMultiline(a.reader, "- New note text:", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	if content == "" {
		content = cur.Content
	}

	curFolder := ""
	if cur.FolderID != nil {
		curFolder = *cur.FolderID
	}
	folder, err := GetSimpleText(a.reader, fmt.Sprintf("- Folder [%s] (empty keeps, '-' unfiles)", curFolder), os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	folderID := cur.FolderID
	switch folder {
	case "":
	case "-":
		folderID = nil
	default:
		folderID = &folder
	}

	if _, err := a.svc.Update(ctx, id, title, content, folderID); err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	printlnFn("Updated", id)
	return nil
}

func (a *App) Archive(ctx context.Context) error {
	return a.withNoteID(ctx, "archive", a.svcArchive)
}

func (a *App) Restore(ctx context.Context) error {
	return a.withNoteID(ctx, "restore", a.svcRestore)
}

func (a *App) Delete(ctx context.Context) error {
	return a.withNoteID(ctx, "delete", a.svcDelete)
}

func (a *App) svcArchive(ctx context.Context, id string) error { return a.svc.Archive(ctx, id) }
func (a *App) svcRestore(ctx context.Context, id string) error { return a.svc.Restore(ctx, id) }
func (a *App) svcDelete(ctx context.Context, id string) error  { return a.svc.Delete(ctx, id) }

func (a *App) withNoteID(ctx context.Context, verb string, fn func(context.Context, string) error) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	id, err := GetSimpleText(a.reader, "Enter note id to "+verb, os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	if err := fn(ctx, id); err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	printlnFn("OK")
	return nil
}

// Sync triggers a drain by hand. Normally the connectivity monitor and the
// write path do this; the command exists for impatient humans.
func (a *App) Sync(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.engine == nil {
		printlnFn("Nothing to sync in passthrough mode.")
		return nil
	}

	if err := a.engine.Drain(ctx); err != nil {
		printlnFn(errorColor("sync error:"), err)
		return err
	}

	st, err := a.engine.Status(ctx)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	if st.PendingCount == 0 {
		printlnFn(onlineColor("Everything synced."))
	} else {
		printlnFn(fmt.Sprintf("%d change(s) still waiting.", st.PendingCount))
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.engine == nil {
		printlnFn("Passthrough mode: nothing pending.")
		return nil
	}

	st, err := a.engine.Status(ctx)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	printlnFn("Pending changes:", st.PendingCount)
	if st.IsSyncing {
		printlnFn("Sync in progress.")
	}

	failed, err := a.engine.EntityErrors(ctx)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	for id, reason := range failed {
		printlnFn(errorColor("rejected:"), id, "-", reason)
	}
	if len(failed) > 0 {
		printlnFn("Run 'retry' after fixing the note.")
	}
	return nil
}

func (a *App) Retry(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if a.engine == nil {
		printlnFn("Nothing to retry in passthrough mode.")
		return nil
	}

	id, err := GetSimpleText(a.reader, "Enter note id to retry", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	if err := a.engine.Retry(ctx, id); err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}

	go func() {
		if err := a.engine.Drain(context.Background()); err != nil {
			a.logger.Error(context.Background(), "sync failed", "error", err)
		}
	}()
	printlnFn("Retrying", id)
	return nil
}

// Clear wipes the local cache after confirmation. Unsynced edits are lost.
func (a *App) Clear(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	answer, err := GetSimpleText(a.reader, "Clear the local cache? Unsynced changes will be lost. Type 'yes' to confirm", os.Stdout)
	if err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	if answer != "yes" {
		printlnFn("Aborted.")
		return nil
	}

	if err := a.svc.ClearCache(ctx); err != nil {
		printlnFn(errorColor("error:"), err)
		return err
	}
	printlnFn("Local cache cleared.")
	return nil
}

func (a *App) unsyncedSet(ctx context.Context) map[string]struct{} {
	set := map[string]struct{}{}
	if a.engine == nil {
		return set
	}
	ids, err := a.engine.UnsyncedEntityIDs(ctx)
	if err != nil {
		return set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
