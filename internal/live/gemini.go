package live

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/sjson"

	"ccswitch/config/models"
	"ccswitch/config/storage"
	"ccswitch/internal/apperr"
	"ccswitch/internal/commonconfig"
)

// GeminiAPIKeyEnv is the variable an API key provider must set
const GeminiAPIKeyEnv = "GEMINI_API_KEY"

// GeminiAuthType is the value of security.auth.selectedType in settings.json
type GeminiAuthType string

const (
	GeminiAuthOAuth  GeminiAuthType = "oauth-personal"
	GeminiAuthAPIKey GeminiAuthType = "gemini-api-key"
)

const (
	googleOfficialPartner = "google-official"
	selectedTypePath      = "security.auth.selectedType"
)

// GeminiAdapter owns ~/.gemini/.env and ~/.gemini/settings.json
type GeminiAdapter struct {
	paths Paths
}

func (a *GeminiAdapter) App() models.AppType { return models.AppGemini }
func (a *GeminiAdapter) ConfigDir() string   { return a.paths.GeminiDir }
func (a *GeminiAdapter) HasLive() bool       { return storage.FileExists(a.paths.GeminiEnv()) }

func (a *GeminiAdapter) Files() []string {
	return []string{a.paths.GeminiEnv(), a.paths.GeminiSettings()}
}

// DetectGeminiAuth tells Google's own login apart from API key providers
func DetectGeminiAuth(p models.Provider) GeminiAuthType {
	if p.Meta != nil && strings.EqualFold(p.Meta.PartnerPromotionKey, googleOfficialPartner) {
		return GeminiAuthOAuth
	}
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "google" || strings.HasPrefix(name, "google ") {
		return GeminiAuthOAuth
	}
	return GeminiAuthAPIKey
}

func (a *GeminiAdapter) Read() (map[string]any, error) {
	path := a.paths.GeminiEnv()
	if !storage.FileExists(path) {
		return nil, missingLive(models.AppGemini, path)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, apperr.Config("gemini.env.parse_failed",
			fmt.Sprintf("解析 .env 失败 %s: %v", path, err),
			fmt.Sprintf("failed to parse .env file %s: %v", path, err))
	}
	env := make(map[string]any, len(values))
	for k, v := range values {
		env[k] = v
	}

	config := map[string]any{}
	if storage.FileExists(a.paths.GeminiSettings()) {
		if config, err = readJSONObject(a.paths.GeminiSettings()); err != nil {
			return nil, err
		}
	}
	return map[string]any{"env": env, "config": config}, nil
}

func (a *GeminiAdapter) Write(p models.Provider, common string) error {
	content, _ := models.CloneValue(p.Settings()).(map[string]any)
	if p.UsesCommonConfig() {
		snippet, err := commonconfig.ParseJSONSnippet(models.AppGemini, common)
		if err != nil {
			return err
		}
		if snippet != nil {
			content = commonconfig.MergeJSON(snippet, content)
		}
	}

	authType := DetectGeminiAuth(p)
	env := map[string]string{}
	if authType == GeminiAuthAPIKey {
		if obj, ok := objectAt(content, "env"); ok {
			for k, v := range obj {
				switch val := v.(type) {
				case nil:
				case string:
					env[k] = val
				default:
					env[k] = fmt.Sprint(val)
				}
			}
		}
		if strings.TrimSpace(env[GeminiAPIKeyEnv]) == "" {
			return apperr.Validation("gemini.validation.missing_api_key",
				fmt.Sprintf("Gemini 供应商 %s 缺少 %s", p.Name, GeminiAPIKeyEnv),
				fmt.Sprintf("Gemini provider %s is missing %s", p.Name, GeminiAPIKeyEnv))
		}
	}

	settings, err := a.mergedSettings(content["config"])
	if err != nil {
		return err
	}
	settings, err = sjson.SetBytes(settings, selectedTypePath, string(authType))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", selectedTypePath, err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, settings, "", "  "); err != nil {
		return fmt.Errorf("failed to format settings.json: %w", err)
	}
	pretty.WriteByte('\n')

	text, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to render .env: %w", err)
	}
	if text != "" {
		text += "\n"
	}
	if err := storage.WriteTextFile(a.paths.GeminiEnv(), text); err != nil {
		return err
	}
	return storage.AtomicWrite(a.paths.GeminiSettings(), pretty.Bytes(), 0o600)
}

// mergedSettings lays the provider's config object key by key over the
// existing settings.json. A null or empty config leaves the file as it is.
func (a *GeminiAdapter) mergedSettings(config any) ([]byte, error) {
	existing := map[string]any{}
	if storage.FileExists(a.paths.GeminiSettings()) {
		var err error
		if existing, err = readJSONObject(a.paths.GeminiSettings()); err != nil {
			return nil, err
		}
	}
	switch cfg := config.(type) {
	case nil:
	case map[string]any:
		for k, v := range cfg {
			existing[k] = v
		}
	default:
		return nil, apperr.Validation("gemini.config.not_object",
			"Gemini config 必须是 JSON 对象",
			"Gemini config must be a JSON object")
	}
	data, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize settings.json: %w", err)
	}
	return data, nil
}

func (a *GeminiAdapter) Capture(p models.Provider, common string) (map[string]any, error) {
	live, err := a.Read()
	if err != nil {
		return nil, err
	}
	return stripCommonJSON(models.AppGemini, p, live, common)
}

func (a *GeminiAdapter) LegacyFiles(models.Provider) []string {
	return nil
}
