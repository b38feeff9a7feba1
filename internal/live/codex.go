package live

import (
	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/codexconfig"
	"ccswitch/internal/log"
)

// CodexAdapter owns ~/.codex/auth.json and ~/.codex/config.toml
type CodexAdapter struct {
	paths   Paths
	backups *storage.BackupManager
}

func (a *CodexAdapter) App() models.AppType { return models.AppCodex }
func (a *CodexAdapter) ConfigDir() string   { return a.paths.CodexDir }

func (a *CodexAdapter) Files() []string {
	return []string{a.paths.CodexAuth(), a.paths.CodexConfig()}
}

func (a *CodexAdapter) HasLive() bool {
	return storage.FileExists(a.paths.CodexAuth()) || storage.FileExists(a.paths.CodexConfig())
}

func (a *CodexAdapter) Read() (map[string]any, error) {
	if !a.HasLive() {
		return nil, missingLive(models.AppCodex, a.paths.CodexConfig())
	}
	out := make(map[string]any)
	if storage.FileExists(a.paths.CodexAuth()) {
		auth, err := readJSONObject(a.paths.CodexAuth())
		if err != nil {
			return nil, err
		}
		out["auth"] = auth
	}
	text, err := a.liveConfig()
	if err != nil {
		return nil, err
	}
	out["config"] = text
	return out, nil
}

func (a *CodexAdapter) liveConfig() (string, error) {
	if !storage.FileExists(a.paths.CodexConfig()) {
		return "", nil
	}
	return storage.ReadTextFile(a.paths.CodexConfig())
}

func (a *CodexAdapter) Write(p models.Provider, common string) error {
	settings := p.Settings()
	auth, _ := objectAt(settings, "auth")
	snippet, _ := settings["config"].(string)
	if !p.UsesCommonConfig() {
		common = ""
	}

	base, err := a.liveConfig()
	if err != nil {
		return err
	}
	text, err := codexconfig.Project(snippet, base, codexconfig.ProjectOptions{
		ProviderName: p.Name,
		HasAuth:      len(auth) > 0,
		Common:       common,
	})
	if err != nil {
		return err
	}

	if len(auth) > 0 {
		if err := storage.WriteJSONFile(a.paths.CodexAuth(), auth); err != nil {
			return err
		}
	} else if err := a.retireAuth(snippet); err != nil {
		return err
	}
	return storage.WriteTextFile(a.paths.CodexConfig(), text)
}

// retireAuth moves a stale auth.json out of the way when the provider uses
// the OpenAI auth mode without credentials of its own
func (a *CodexAdapter) retireAuth(snippet string) error {
	path := a.paths.CodexAuth()
	if !storage.FileExists(path) {
		return nil
	}
	requires, err := codexconfig.RequiresOpenAIAuth(snippet, false)
	if err != nil || !requires {
		return err
	}
	backup, err := a.backups.CreateBackup(path)
	if err != nil {
		return err
	}
	log.Detail("backed up %s to %s", path, backup)
	return storage.DeleteFile(path)
}

func (a *CodexAdapter) Capture(p models.Provider, _ string) (map[string]any, error) {
	if !a.HasLive() {
		return nil, missingLive(models.AppCodex, a.paths.CodexConfig())
	}
	out, _ := models.CloneValue(p.Settings()).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}
	if storage.FileExists(a.paths.CodexAuth()) {
		auth, err := readJSONObject(a.paths.CodexAuth())
		if err != nil {
			return nil, err
		}
		out["auth"] = auth
	}

	text, err := a.liveConfig()
	if err != nil {
		return nil, err
	}
	previous, _ := out["config"].(string)
	snippet, err := codexconfig.Extract(text, previous)
	if err != nil {
		return nil, err
	}
	out["config"] = snippet
	return out, nil
}

// ExtractCommon derives a common snippet from the live config.toml
func (a *CodexAdapter) ExtractCommon() (string, error) {
	text, err := a.liveConfig()
	if err != nil {
		return "", err
	}
	return codexconfig.ExtractCommon(text)
}

func (a *CodexAdapter) LegacyFiles(p models.Provider) []string {
	return legacyPaths(a.paths.CodexDir, p, func(stem string) []string {
		return []string{"auth-" + stem + ".json", "config-" + stem + ".toml"}
	})
}
