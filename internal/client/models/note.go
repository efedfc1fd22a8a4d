// Package models defines client-side data models used by the Inkwell client:
// the Note entity stored in the local reservoir and the mutation records that
// describe pending writes awaiting synchronization.
package models

// LocalIDPrefix marks client-generated note ids that have not yet been
// acknowledged by the remote store. The sync engine rewrites them to the
// server-assigned canonical id on the first successful Create push.
const LocalIDPrefix = "tmp-"

// DefaultFolderID is the UI-boundary sentinel for "default/unfiled". It must
// never be persisted: callers normalize it to a nil FolderID before any write.
const DefaultFolderID = "__default__"

// Note is a single note record, persisted locally and synced with the remote
// store.
type Note struct {
	// ID is a stable opaque identifier. Client-assigned (LocalIDPrefix) until
	// the remote store acknowledges the Create, server-assigned afterwards.
	ID string `json:"id"`

	// UserID scopes the note to an account; all local tables are keyed by it
	// so switching accounts does not leak data across sessions.
	UserID string `json:"user_id"`

	// Title is the note heading shown in lists.
	Title string `json:"title"`

	// Content is an opaque text blob; the client never interprets it.
	Content string `json:"content"`

	// FolderID references the containing folder. Nil means default/unfiled.
	FolderID *string `json:"folder_id"`

	// IsArchived marks the note as archived (soft-hidden, not deleted).
	IsArchived bool `json:"is_archived"`

	// CreatedAt and UpdatedAt are logical timestamps (unix milliseconds)
	// assigned at mutation time. UpdatedAt strictly increases on every
	// accepted mutation, local or remote, and is the sole conflict signal.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// IsLocalID reports whether id was generated on this client and is still
// awaiting a server-assigned canonical id.
func IsLocalID(id string) bool {
	return len(id) > len(LocalIDPrefix) && id[:len(LocalIDPrefix)] == LocalIDPrefix
}

// NormalizeFolder maps the UI "default folder" sentinel to nil so the
// sentinel value is never written to the reservoir or pushed remotely.
func NormalizeFolder(folderID *string) *string {
	if folderID == nil || *folderID == DefaultFolderID || *folderID == "" {
		return nil
	}
	return folderID
}
