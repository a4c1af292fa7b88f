// Package sqlite stores remembered settings and the commit log in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/gallery-admin/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle and hands out repositories.
type DB struct {
	SqlDB *sql.DB
}

// New opens the database at dbPath with WAL journaling and a single
// connection.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{SqlDB: db}, nil
}

// Migrate applies pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

// Close closes the database.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Settings returns the settings repository.
func (d *DB) Settings() *SettingsRepository {
	return NewSettingsRepository(d)
}

// Commits returns the commit log repository.
func (d *DB) Commits() *CommitLogRepository {
	return NewCommitLogRepository(d)
}
