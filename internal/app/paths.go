package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DataDir is spoon's directory under the user config dir.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "spoon"), nil
}

func DefaultDBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "spoon.db"), nil
}

// BackupDir keeps backups beside the database they were taken from.
func BackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// BackupPath names a timestamped backup file in dir.
func BackupPath(dir string, now time.Time) string {
	return filepath.Join(dir, "spoon-"+now.Format("20060102-150405")+".db")
}

func EnsureDBDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create db directory for %s: %w", path, err)
	}
	return nil
}
