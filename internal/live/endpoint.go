package live

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"ccswitch/config/models"
	"ccswitch/internal/codexconfig"
)

const (
	// ClaudeBaseURLEnv is the env key holding a Claude provider's API endpoint
	ClaudeBaseURLEnv = "ANTHROPIC_BASE_URL"
	// GeminiBaseURLEnv is the env key holding a Gemini provider's API endpoint
	GeminiBaseURLEnv = "GOOGLE_GEMINI_BASE_URL"
)

// older Gemini providers used these keys
var geminiBaseURLFallbacks = []string{"GEMINI_BASE_URL", "BASE_URL"}

// APIEndpoint returns the API base URL a provider points its app at, or ""
// when the settings name none (the app's built-in endpoint)
func APIEndpoint(app models.AppType, p models.Provider) string {
	switch app {
	case models.AppCodex:
		snippet, _ := p.Settings()["config"].(string)
		return codexconfig.BaseURL(snippet)
	case models.AppClaude, models.AppGemini:
		data, err := json.Marshal(p.SettingsConfig)
		if err != nil {
			return ""
		}
		keys := []string{ClaudeBaseURLEnv}
		if app == models.AppGemini {
			keys = append([]string{GeminiBaseURLEnv}, geminiBaseURLFallbacks...)
		}
		for _, key := range keys {
			if v := strings.TrimSpace(gjson.GetBytes(data, "env."+key).String()); v != "" {
				return v
			}
		}
	}
	return ""
}
