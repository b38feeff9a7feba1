// Package live reads and writes the configuration files each CLI actually
// loads (the "live" files), and can snapshot and restore them.
package live

import (
	"fmt"
	"os"
	"path/filepath"

	"ccswitch/config/models"
)

// Environment variables the CLIs themselves honor for their config directory
const (
	ClaudeDirEnv = "CLAUDE_CONFIG_DIR"
	CodexDirEnv  = "CODEX_HOME"
)

// Paths locates the config directory of every app
type Paths struct {
	ClaudeDir string
	CodexDir  string
	GeminiDir string
}

// DefaultPaths resolves the config directories: override first (may be nil),
// then the app's own environment variable, then the directory under $HOME.
func DefaultPaths(override func(models.AppType) string) (Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get user home directory: %w", err)
	}
	pick := func(app models.AppType, env, fallback string) string {
		if override != nil {
			if dir := override(app); dir != "" {
				return dir
			}
		}
		if env != "" {
			if dir := os.Getenv(env); dir != "" {
				return dir
			}
		}
		return filepath.Join(homeDir, fallback)
	}
	return Paths{
		ClaudeDir: pick(models.AppClaude, ClaudeDirEnv, ".claude"),
		CodexDir:  pick(models.AppCodex, CodexDirEnv, ".codex"),
		GeminiDir: pick(models.AppGemini, "", ".gemini"),
	}, nil
}

// PathsUnder places every app directory below root, the way they sit under $HOME
func PathsUnder(root string) Paths {
	return Paths{
		ClaudeDir: filepath.Join(root, ".claude"),
		CodexDir:  filepath.Join(root, ".codex"),
		GeminiDir: filepath.Join(root, ".gemini"),
	}
}

// Dir returns the config directory of app
func (p Paths) Dir(app models.AppType) string {
	switch app {
	case models.AppClaude:
		return p.ClaudeDir
	case models.AppCodex:
		return p.CodexDir
	case models.AppGemini:
		return p.GeminiDir
	}
	return ""
}

func (p Paths) ClaudeSettings() string { return filepath.Join(p.ClaudeDir, "settings.json") }
func (p Paths) CodexAuth() string      { return filepath.Join(p.CodexDir, "auth.json") }
func (p Paths) CodexConfig() string    { return filepath.Join(p.CodexDir, "config.toml") }
func (p Paths) GeminiEnv() string      { return filepath.Join(p.GeminiDir, ".env") }
func (p Paths) GeminiSettings() string { return filepath.Join(p.GeminiDir, "settings.json") }
