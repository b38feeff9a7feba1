package live

import (
	"testing"

	"ccswitch/config/models"
)

func TestAPIEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		app      models.AppType
		settings any
		want     string
	}{
		{
			name:     "claude env",
			app:      models.AppClaude,
			settings: map[string]any{"env": map[string]any{ClaudeBaseURLEnv: " https://relay.example.com "}},
			want:     "https://relay.example.com",
		},
		{
			name:     "claude official",
			app:      models.AppClaude,
			settings: map[string]any{"env": map[string]any{"ANTHROPIC_AUTH_TOKEN": "sk"}},
			want:     "",
		},
		{
			name:     "codex snippet",
			app:      models.AppCodex,
			settings: map[string]any{"config": "base_url = \"https://codex.example.com/v1\"\nmodel = \"m\""},
			want:     "https://codex.example.com/v1",
		},
		{
			name:     "codex malformed snippet",
			app:      models.AppCodex,
			settings: map[string]any{"config": "base_url = "},
			want:     "",
		},
		{
			name:     "gemini env",
			app:      models.AppGemini,
			settings: map[string]any{"env": map[string]any{GeminiBaseURLEnv: "https://gem.example.com"}},
			want:     "https://gem.example.com",
		},
		{
			name:     "gemini fallback key",
			app:      models.AppGemini,
			settings: map[string]any{"env": map[string]any{"GEMINI_BASE_URL": "https://old.example.com"}},
			want:     "https://old.example.com",
		},
		{
			name:     "non-object settings",
			app:      models.AppClaude,
			settings: "oops",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := APIEndpoint(tt.app, models.Provider{ID: "p", SettingsConfig: tt.settings})
			if got != tt.want {
				t.Errorf("APIEndpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}
