package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/db"
)

const checksumSuffix = ".sha256"

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// CreateBackup snapshots the open database to outPath and writes a sha256
// sidecar next to it.
func CreateBackup(ctx context.Context, sqldb *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, invalid("out", "backup path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := db.Snapshot(ctx, sqldb, outPath); err != nil {
		return BackupInfo{}, err
	}
	sum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+checksumSuffix, []byte(sum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum: %w", err)
	}
	return backupInfo(outPath)
}

// RestoreBackup checks the backup against its sidecar and with a quick
// check before replacing dbPath. An existing database is only replaced
// when force is set.
func RestoreBackup(ctx context.Context, backupPath, dbPath string, force bool) error {
	if _, err := os.Stat(dbPath); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite", dbPath)
	}
	info, err := backupInfo(backupPath)
	if err != nil {
		return err
	}
	if info.Checksum != "" {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if actual != info.Checksum {
			return fmt.Errorf("backup checksum mismatch: sidecar %s, file %s", info.Checksum, actual)
		}
	}
	if err := verifyBackup(ctx, backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	tmp := dbPath + ".restore"
	if err := copyFile(backupPath, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

func verifyBackup(ctx context.Context, path string) error {
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	if err := db.QuickCheck(ctx, sqldb); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	return nil
}

// ListBackups returns the .db files in dir, newest first. A missing dir
// yields no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.db"))
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	out := make([]BackupInfo, 0, len(paths))
	for _, p := range paths {
		info, err := backupInfo(p)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func backupInfo(path string) (BackupInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	if st.IsDir() {
		return BackupInfo{}, invalid("path", "%s is a directory", path)
	}
	info := BackupInfo{Path: path, CreatedAt: st.ModTime(), SizeBytes: st.Size()}
	if b, err := os.ReadFile(path + checksumSuffix); err == nil {
		info.Checksum = strings.TrimSpace(string(b))
	}
	return info, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for checksum: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
