package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/apperr"
	"ccswitch/internal/log"
)

const (
	// HomeEnv overrides the directory holding config.json and settings.yaml
	HomeEnv = "CC_SWITCH_HOME"

	storeFileName = "config.json"
)

// HomeDir returns the cc-switch data directory ($CC_SWITCH_HOME or ~/.cc-switch)
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cc-switch"), nil
}

// DefaultStorePath returns the path of the persisted provider store
func DefaultStorePath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, storeFileName), nil
}

// Store guards the single in-memory MultiAppConfig and persists it wholesale.
//
// The RWMutex only protects memory. Disk writes happen outside it and are
// serialized across processes by an exclusive lock on a sibling .lock file.
type Store struct {
	path    string
	mu      sync.RWMutex
	cfg     *models.MultiAppConfig
	saveMu  sync.Mutex
	backups *storage.BackupManager
}

// OpenStore loads the store at path; a missing or empty file yields an empty store
func OpenStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		backups: storage.NewBackupManager(storage.DefaultBackupRetention),
	}
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	return s, nil
}

// NewStore wraps an already loaded config; it is persisted to path on Save
func NewStore(path string, cfg *models.MultiAppConfig) *Store {
	if cfg == nil {
		cfg = models.NewMultiAppConfig()
	}
	cfg.Normalize()
	return &Store{
		path:    path,
		cfg:     cfg,
		backups: storage.NewBackupManager(storage.DefaultBackupRetention),
	}
}

// Path returns the store file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*models.MultiAppConfig, error) {
	var cfg *models.MultiAppConfig
	err := s.withFileLock(func() error {
		data, err := os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			cfg = models.NewMultiAppConfig()
			return nil
		}
		if err != nil {
			return apperr.IO(s.path, err)
		}
		if len(data) == 0 {
			cfg = models.NewMultiAppConfig()
			return nil
		}
		var loaded models.MultiAppConfig
		if err := json.Unmarshal(data, &loaded); err != nil {
			return apperr.Config("config.parse_failed",
				fmt.Sprintf("解析配置文件失败 %s: %v", s.path, err),
				fmt.Sprintf("failed to parse config file %s: %v", s.path, err))
		}
		loaded.Normalize()
		cfg = &loaded
		return nil
	})
	return cfg, err
}

// withFileLock runs fn while holding the cross-process lock
func (s *Store) withFileLock(fn func() error) error {
	lockPath := s.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return apperr.IO(filepath.Dir(lockPath), err)
	}
	f, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return apperr.IO(lockPath, err)
	}
	defer f.Close()

	if err := lockFileExclusive(f); err != nil {
		return apperr.IO(lockPath, err)
	}
	defer func() {
		if err := unlockFile(f); err != nil {
			log.Warn("failed to unlock %s: %v", lockPath, err)
		}
	}()
	return fn()
}

// Read runs fn with shared access to the current config. fn must not retain
// or modify cfg.
func (s *Store) Read(fn func(cfg *models.MultiAppConfig)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.cfg)
}

// Snapshot returns a deep copy of the current config
func (s *Store) Snapshot() *models.MultiAppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Mutate runs fn with exclusive access and returns a copy of the config as it
// was before fn ran. When fn fails the in-memory config is restored from that
// copy and nothing touches the disk.
func (s *Store) Mutate(fn func(cfg *models.MultiAppConfig) error) (*models.MultiAppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original := s.cfg.Clone()
	if err := fn(s.cfg); err != nil {
		s.cfg = original
		return nil, err
	}
	return original, nil
}

// Replace swaps the in-memory config for cfg
func (s *Store) Replace(cfg *models.MultiAppConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Save persists the in-memory config: backup the previous file, then
// temp+rename under the cross-process lock.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return apperr.Config("config.serialize_failed",
			fmt.Sprintf("序列化配置失败: %v", err),
			fmt.Sprintf("failed to serialize config: %v", err))
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	return s.withFileLock(func() error {
		if storage.FileExists(s.path) {
			if _, err := s.backups.CreateBackup(s.path); err != nil {
				log.Warn("failed to back up %s: %v", s.path, err)
			}
		}
		if err := storage.AtomicWrite(s.path, append(data, '\n'), 0o600); err != nil {
			return err
		}
		if err := s.backups.CleanupOldBackups(s.path); err != nil {
			log.Warn("failed to prune backups of %s: %v", s.path, err)
		}
		return nil
	})
}

// RestoreLatestBackup puts the newest backup of the store file back in place
// and reloads it. It returns the backup path that was restored.
func (s *Store) RestoreLatestBackup() (string, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var restored string
	err := s.withFileLock(func() error {
		backups, err := s.backups.ListBackups(s.path)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			return apperr.NotFound("config.backup.none",
				fmt.Sprintf("没有可恢复的备份: %s", s.path),
				fmt.Sprintf("no backup to restore for %s", s.path))
		}
		restored = backups[len(backups)-1]
		return s.backups.RestoreFromLatestBackup(s.path)
	})
	if err != nil {
		return "", err
	}

	cfg, err := s.load()
	if err != nil {
		return "", err
	}
	s.Replace(cfg)
	return restored, nil
}
