package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/db"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spoon.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
