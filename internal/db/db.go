package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver on every new connection.
const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Open opens the SQLite file at path. A single connection serializes
// writes from the API server and background saves.
func Open(path string) (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite database %s: %w", path, err)
	}
	return sqldb, nil
}

// Snapshot writes a consistent copy of the open database to dest with
// VACUUM INTO. dest must not exist yet.
func Snapshot(ctx context.Context, sqldb *sql.DB, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("snapshot target %s already exists", dest)
	}
	if _, err := sqldb.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("snapshot database to %s: %w", dest, err)
	}
	return nil
}

// QuickCheck runs PRAGMA quick_check and reports the first problem found.
func QuickCheck(ctx context.Context, sqldb *sql.DB) error {
	var status string
	if err := sqldb.QueryRowContext(ctx, `PRAGMA quick_check`).Scan(&status); err != nil {
		return fmt.Errorf("quick check: %w", err)
	}
	if status != "ok" {
		return fmt.Errorf("database failed quick check: %s", status)
	}
	return nil
}
