package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/dbx"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/localstore/migrations"
)

// SQLiteBackend stores one row per collection slot in a local SQLite file,
// the durable medium for desktop and server deployments.
type SQLiteBackend struct {
	db dbx.DBTX
}

// NewSQLiteBackend returns a backend bound to the given DBTX. The schema is
// expected to be in place; use OpenSQLite to open and migrate in one step.
func NewSQLiteBackend(db dbx.DBTX) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// OpenSQLite opens (or creates) the database at dsn, runs migrations and
// returns the connection alongside a ready backend.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, *SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating sqlite database: %w", err)
	}
	return db, NewSQLiteBackend(db), nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT data FROM local_tables WHERE name = ?`

	var data []byte
	err := b.db.QueryRowContext(ctx, query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return data, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO local_tables (name, data)
			VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET data = excluded.data
	`
	if _, err := b.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to upsert slot: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM local_tables WHERE name = ?`
	if _, err := b.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}
