// Package store opens the client's local SQLite database and applies the
// embedded schema migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/tradeguard/internal/client/migrations"
	"github.com/dmitrijs2005/tradeguard/internal/filex"
)

// FileName is the database file created inside the data directory.
const FileName = "session.db"

// RunMigrations brings db up to the latest embedded schema version.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// OpenDSN opens an SQLite database by DSN and migrates it.
func OpenDSN(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Open creates dataDir if needed and opens the session database inside it.
func Open(ctx context.Context, dataDir string) (*sql.DB, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, err
	}

	dsn := "file:" + filepath.Join(dir, FileName) + "?_pragma=busy_timeout(5000)"
	return OpenDSN(ctx, dsn)
}
