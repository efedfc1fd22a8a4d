// Package storage opens the client's local SQLite database, applies embedded
// migrations and wires the reservoir repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/inkwell-notes/inkwell/internal/client/migrations"
	"github.com/inkwell-notes/inkwell/internal/client/repositories/metadata"
	"github.com/inkwell-notes/inkwell/internal/client/repositories/mutations"
	"github.com/inkwell-notes/inkwell/internal/client/repositories/notes"
)

// Storage bundles the open database handle with the repositories bound to it.
// The handle is exposed so the service layer can pair a note write with a
// mutation append inside one transaction (dbx.WithTx).
type Storage struct {
	DB        *sql.DB
	Notes     *notes.SQLiteRepository
	Mutations *mutations.SQLiteRepository
	Metadata  *metadata.SQLiteRepository
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the SQLite database at dsn, migrates it and returns
// the wired repositories.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	// SQLite allows one writer; the local store is owned exclusively by this
	// process, so a single connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{
		DB:        db,
		Notes:     notes.NewSQLiteRepository(db),
		Mutations: mutations.NewSQLiteRepository(db),
		Metadata:  metadata.NewSQLiteRepository(db),
	}, nil
}

// Close closes the underlying database handle.
func (s *Storage) Close() error {
	return s.DB.Close()
}
