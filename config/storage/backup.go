package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ccswitch/internal/apperr"
)

// Backup constants
const (
	// DefaultBackupRetention is the default number of backups to keep
	DefaultBackupRetention = 3

	backupInfix = ".cc-switch.bak."
)

// BackupManager keeps timestamped copies of a file next to it
type BackupManager struct {
	// MaxBackups is the maximum number of backups to retain
	MaxBackups int
	now        func() time.Time
}

// NewBackupManager creates a new BackupManager; maxBackups <= 0 selects the default
func NewBackupManager(maxBackups int) *BackupManager {
	if maxBackups <= 0 {
		maxBackups = DefaultBackupRetention
	}
	return &BackupManager{MaxBackups: maxBackups, now: time.Now}
}

// CreateBackup copies filePath to <filePath>.cc-switch.bak.<timestamp>-<pid>
// and returns the backup path.
func (bm *BackupManager) CreateBackup(filePath string) (string, error) {
	stamp := bm.now().Format("20060102150405.000000000")
	backupPath := fmt.Sprintf("%s%s%s-%d", filePath, backupInfix, stamp, os.Getpid())

	if err := copyFile(filePath, backupPath); err != nil {
		return "", apperr.IO(backupPath, err)
	}
	return backupPath, nil
}

// ListBackups returns the backups of filePath, oldest first
func (bm *BackupManager) ListBackups(filePath string) ([]string, error) {
	backupFiles, err := filepath.Glob(filePath + backupInfix + "*")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	// the timestamp sorts lexically
	sort.Strings(backupFiles)
	return backupFiles, nil
}

// CleanupOldBackups removes all but the newest MaxBackups backups
func (bm *BackupManager) CleanupOldBackups(filePath string) error {
	backupFiles, err := bm.ListBackups(filePath)
	if err != nil {
		return err
	}

	numToRemove := len(backupFiles) - bm.MaxBackups
	if numToRemove <= 0 {
		return nil
	}
	for _, oldBackup := range backupFiles[:numToRemove] {
		if err := os.Remove(oldBackup); err != nil {
			return apperr.IO(oldBackup, err)
		}
	}
	return nil
}

// RestoreFromLatestBackup copies the newest backup back over filePath
func (bm *BackupManager) RestoreFromLatestBackup(filePath string) error {
	backupFiles, err := bm.ListBackups(filePath)
	if err != nil {
		return err
	}
	if len(backupFiles) == 0 {
		return fmt.Errorf("no backup files found for %s", filePath)
	}

	latest := backupFiles[len(backupFiles)-1]
	data, err := os.ReadFile(latest)
	if err != nil {
		return apperr.IO(latest, err)
	}
	return AtomicWrite(filePath, data, 0o600)
}

// copyFile copies a file from src to dst, preserving its permissions
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
