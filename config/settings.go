package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/apperr"
)

// LiveSyncMode decides when an app's live files may be written
type LiveSyncMode string

const (
	// LiveSyncAuto writes live files only for apps whose config directory exists
	LiveSyncAuto LiveSyncMode = "auto"
	// LiveSyncAlways writes live files unconditionally
	LiveSyncAlways LiveSyncMode = "always"
	// LiveSyncNever only updates the store
	LiveSyncNever LiveSyncMode = "never"
)

const settingsFileName = "settings.yaml"

// AppSettings holds user preferences that are not provider data
type AppSettings struct {
	ClaudeConfigDir string       `yaml:"claude_config_dir,omitempty"`
	CodexConfigDir  string       `yaml:"codex_config_dir,omitempty"`
	GeminiConfigDir string       `yaml:"gemini_config_dir,omitempty"`
	LiveSync        LiveSyncMode `yaml:"live_sync,omitempty"`
}

// DefaultSettingsPath returns the path of settings.yaml
func DefaultSettingsPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// LoadSettings reads settings from path; a missing file yields defaults
func LoadSettings(path string) (*AppSettings, error) {
	settings := &AppSettings{LiveSync: LiveSyncAuto}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, apperr.IO(path, err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, apperr.Config("settings.parse_failed",
			fmt.Sprintf("解析设置文件失败 %s: %v", path, err),
			fmt.Sprintf("failed to parse settings file %s: %v", path, err))
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to path
func (s *AppSettings) Save(path string) error {
	if err := s.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	return storage.AtomicWrite(path, data, 0o600)
}

func (s *AppSettings) validate() error {
	switch s.LiveSync {
	case "":
		s.LiveSync = LiveSyncAuto
	case LiveSyncAuto, LiveSyncAlways, LiveSyncNever:
	default:
		return apperr.Validation("settings.live_sync_invalid",
			fmt.Sprintf("live_sync 取值无效: %q（可选 auto、always、never）", s.LiveSync),
			fmt.Sprintf("invalid live_sync value %q (expected auto, always or never)", s.LiveSync))
	}
	return nil
}

// ConfigDirOverride returns the user override for app's config directory, with ~ expanded
func (s *AppSettings) ConfigDirOverride(app models.AppType) string {
	var dir string
	switch app {
	case models.AppClaude:
		dir = s.ClaudeConfigDir
	case models.AppCodex:
		dir = s.CodexConfigDir
	case models.AppGemini:
		dir = s.GeminiConfigDir
	}
	return expandHome(strings.TrimSpace(dir))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	return filepath.Join(homeDir, path[2:])
}

// SettingKeys lists the keys accepted by Set, in display order
var SettingKeys = []string{"live_sync", "claude_config_dir", "codex_config_dir", "gemini_config_dir"}

// Get returns the raw value stored for key
func (s *AppSettings) Get(key string) (string, error) {
	switch key {
	case "live_sync":
		return string(s.LiveSync), nil
	case "claude_config_dir":
		return s.ClaudeConfigDir, nil
	case "codex_config_dir":
		return s.CodexConfigDir, nil
	case "gemini_config_dir":
		return s.GeminiConfigDir, nil
	}
	return "", unknownSetting(key)
}

// Set assigns value to key; an empty value resets it
func (s *AppSettings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "live_sync":
		prev := s.LiveSync
		s.LiveSync = LiveSyncMode(value)
		if err := s.validate(); err != nil {
			s.LiveSync = prev
			return err
		}
	case "claude_config_dir":
		s.ClaudeConfigDir = value
	case "codex_config_dir":
		s.CodexConfigDir = value
	case "gemini_config_dir":
		s.GeminiConfigDir = value
	default:
		return unknownSetting(key)
	}
	return nil
}

func unknownSetting(key string) error {
	return apperr.Validation("settings.unknown_key",
		fmt.Sprintf("未知的设置项: %q（可选 %s）", key, strings.Join(SettingKeys, "、")),
		fmt.Sprintf("unknown setting %q (expected one of %s)", key, strings.Join(SettingKeys, ", ")))
}
