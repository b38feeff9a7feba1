package live

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/apperr"
	"ccswitch/internal/commonconfig"
)

// Claude model environment keys
const (
	EnvModel          = "ANTHROPIC_MODEL"
	EnvSmallFastModel = "ANTHROPIC_SMALL_FAST_MODEL"
	EnvHaikuModel     = "ANTHROPIC_DEFAULT_HAIKU_MODEL"
	EnvSonnetModel    = "ANTHROPIC_DEFAULT_SONNET_MODEL"
	EnvOpusModel      = "ANTHROPIC_DEFAULT_OPUS_MODEL"
)

// ClaudeAdapter owns ~/.claude/settings.json
type ClaudeAdapter struct {
	paths Paths
}

func (a *ClaudeAdapter) App() models.AppType { return models.AppClaude }
func (a *ClaudeAdapter) ConfigDir() string   { return a.paths.ClaudeDir }
func (a *ClaudeAdapter) Files() []string     { return []string{a.paths.ClaudeSettings()} }
func (a *ClaudeAdapter) HasLive() bool       { return storage.FileExists(a.paths.ClaudeSettings()) }

func (a *ClaudeAdapter) Read() (map[string]any, error) {
	path := a.paths.ClaudeSettings()
	if !storage.FileExists(path) {
		return nil, missingLive(models.AppClaude, path)
	}
	return readJSONObject(path)
}

func (a *ClaudeAdapter) Write(p models.Provider, common string) error {
	settings := p.Settings()
	if settings == nil {
		return apperr.Validation("provider.settings.not_object",
			"配置必须是 JSON 对象",
			"settings_config must be a JSON object")
	}
	content, err := NormalizeClaudeModels(settings)
	if err != nil {
		return err
	}
	if p.UsesCommonConfig() {
		snippet, err := commonconfig.ParseJSONSnippet(models.AppClaude, common)
		if err != nil {
			return err
		}
		if snippet != nil {
			if content, err = NormalizeClaudeModels(commonconfig.MergeJSON(snippet, content)); err != nil {
				return err
			}
		}
	}
	return storage.WriteJSONFile(a.paths.ClaudeSettings(), content)
}

func (a *ClaudeAdapter) Capture(p models.Provider, common string) (map[string]any, error) {
	live, err := a.Read()
	if err != nil {
		return nil, err
	}
	if live, err = NormalizeClaudeModels(live); err != nil {
		return nil, err
	}
	return stripCommonJSON(models.AppClaude, p, live, common)
}

func (a *ClaudeAdapter) LegacyFiles(p models.Provider) []string {
	return legacyPaths(a.paths.ClaudeDir, p, func(stem string) []string {
		return []string{"settings-" + stem + ".json"}
	})
}

// NormalizeClaudeModels fills the per-tier model keys in settings' env from
// the generic ones and drops the retired small/fast key. settings is not
// modified; a settings value without an env object is returned as a copy.
func NormalizeClaudeModels(settings map[string]any) (map[string]any, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	content := string(data)

	env := gjson.Get(content, "env")
	if env.IsObject() {
		value := func(key string) string {
			r := env.Get(key)
			if r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
				return r.Str
			}
			return ""
		}
		model, smallFast := value(EnvModel), value(EnvSmallFastModel)
		fill := []struct {
			key        string
			candidates []string
		}{
			{EnvHaikuModel, []string{smallFast, model}},
			{EnvSonnetModel, []string{model, smallFast}},
			{EnvOpusModel, []string{model, smallFast}},
		}
		for _, f := range fill {
			if value(f.key) != "" {
				continue
			}
			for _, candidate := range f.candidates {
				if candidate == "" {
					continue
				}
				if content, err = sjson.Set(content, "env."+f.key, candidate); err != nil {
					return nil, fmt.Errorf("failed to set %s: %w", f.key, err)
				}
				break
			}
		}
		if env.Get(EnvSmallFastModel).Exists() {
			if content, err = sjson.Delete(content, "env."+EnvSmallFastModel); err != nil {
				return nil, fmt.Errorf("failed to delete %s: %w", EnvSmallFastModel, err)
			}
		}
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse normalized settings: %w", err)
	}
	return out, nil
}

func readJSONObject(path string) (map[string]any, error) {
	v, err := storage.ReadJSONFile(path)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, apperr.Config("live.not_object",
			fmt.Sprintf("配置文件必须是 JSON 对象: %s", path),
			fmt.Sprintf("live config file must hold a JSON object: %s", path))
	}
	return obj, nil
}

// stripCommonJSON removes the common snippet's values from live when p takes
// part in common config
func stripCommonJSON(app models.AppType, p models.Provider, live map[string]any, common string) (map[string]any, error) {
	if !p.UsesCommonConfig() {
		return live, nil
	}
	snippet, err := commonconfig.ParseJSONSnippet(app, common)
	if err != nil {
		return nil, err
	}
	if snippet == nil {
		return live, nil
	}
	return commonconfig.StripJSON(live, snippet), nil
}

// legacyPaths expands names for both the sanitized display name and the id
func legacyPaths(dir string, p models.Provider, names func(stem string) []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, stem := range []string{SanitizeFileName(p.Name), SanitizeFileName(p.ID)} {
		if stem == "" || seen[stem] {
			continue
		}
		seen[stem] = true
		for _, name := range names(stem) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}
