package live

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"

	"ccswitch/config/models"
	"ccswitch/internal/apperr"
)

func setupRegistry(t *testing.T) (*Registry, Paths) {
	t.Helper()
	paths := PathsUnder(t.TempDir())
	return NewRegistry(paths), paths
}

func mustAdapter(t *testing.T, r *Registry, app models.AppType) Adapter {
	t.Helper()
	a, err := r.Get(app)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", app, err)
	}
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func boolPtr(b bool) *bool { return &b }

func TestNormalizeClaudeModels(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]any
		want map[string]any
	}{
		{
			name: "small fast feeds haiku, model feeds the rest",
			env:  map[string]any{EnvModel: "m", EnvSmallFastModel: "fast"},
			want: map[string]any{EnvModel: "m", EnvHaikuModel: "fast", EnvSonnetModel: "m", EnvOpusModel: "m"},
		},
		{
			name: "only small fast",
			env:  map[string]any{EnvSmallFastModel: "fast"},
			want: map[string]any{EnvHaikuModel: "fast", EnvSonnetModel: "fast", EnvOpusModel: "fast"},
		},
		{
			name: "explicit tiers are kept",
			env:  map[string]any{EnvModel: "m", EnvOpusModel: "big"},
			want: map[string]any{EnvModel: "m", EnvHaikuModel: "m", EnvSonnetModel: "m", EnvOpusModel: "big"},
		},
		{
			name: "nothing to fill",
			env:  map[string]any{"ANTHROPIC_BASE_URL": "https://relay"},
			want: map[string]any{"ANTHROPIC_BASE_URL": "https://relay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := map[string]any{"env": tt.env, "permissions": map[string]any{"allow": []any{"Bash"}}}
			out, err := NormalizeClaudeModels(in)
			if err != nil {
				t.Fatalf("NormalizeClaudeModels failed: %v", err)
			}
			if !reflect.DeepEqual(out["env"], tt.want) {
				t.Errorf("env = %v, want %v", out["env"], tt.want)
			}
			if !reflect.DeepEqual(out["permissions"], in["permissions"]) {
				t.Errorf("unrelated keys changed: %v", out["permissions"])
			}
		})
	}
}

func TestNormalizeClaudeModelsDoesNotModifyInput(t *testing.T) {
	in := map[string]any{"env": map[string]any{EnvSmallFastModel: "fast"}}
	if _, err := NormalizeClaudeModels(in); err != nil {
		t.Fatal(err)
	}
	if _, ok := in["env"].(map[string]any)[EnvSmallFastModel]; !ok {
		t.Error("input env was modified")
	}
}

func TestClaudeWriteMergesCommon(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppClaude)
	p := models.Provider{ID: "p1", Name: "Relay", SettingsConfig: map[string]any{
		"env": map[string]any{"ANTHROPIC_AUTH_TOKEN": "tok", EnvModel: "m"},
	}}
	common := `{"includeCoAuthoredBy": false, "env": {"DISABLE_TELEMETRY": "1"}}`

	if err := a.Write(p, common); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	content := readFile(t, paths.ClaudeSettings())
	if gjson.Get(content, "includeCoAuthoredBy").Bool() || !gjson.Get(content, "includeCoAuthoredBy").Exists() {
		t.Errorf("common key missing from %s", content)
	}
	if gjson.Get(content, "env.DISABLE_TELEMETRY").Str != "1" || gjson.Get(content, "env.ANTHROPIC_AUTH_TOKEN").Str != "tok" {
		t.Errorf("env not merged: %s", content)
	}
	if gjson.Get(content, "env."+EnvOpusModel).Str != "m" {
		t.Errorf("models not normalized: %s", content)
	}

	captured, err := a.Capture(p, common)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if _, ok := captured["includeCoAuthoredBy"]; ok {
		t.Error("common key leaked into captured settings")
	}
	env := captured["env"].(map[string]any)
	if _, ok := env["DISABLE_TELEMETRY"]; ok {
		t.Error("common env leaked into captured settings")
	}
	if env["ANTHROPIC_AUTH_TOKEN"] != "tok" {
		t.Errorf("provider env lost: %v", env)
	}
}

func TestClaudeWriteOptOutSkipsCommon(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppClaude)
	p := models.Provider{
		ID:             "p1",
		Name:           "Relay",
		SettingsConfig: map[string]any{"env": map[string]any{"ANTHROPIC_AUTH_TOKEN": "tok"}},
		Meta:           &models.ProviderMeta{ApplyCommonConfig: boolPtr(false)},
	}
	if err := a.Write(p, `{"includeCoAuthoredBy": false}`); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if gjson.Get(readFile(t, paths.ClaudeSettings()), "includeCoAuthoredBy").Exists() {
		t.Error("common snippet applied to a provider that opted out")
	}
}

func TestClaudeReadMissing(t *testing.T) {
	r, _ := setupRegistry(t)
	_, err := mustAdapter(t, r, models.AppClaude).Read()
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestCodexWriteAndCapture(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppCodex)
	writeFile(t, paths.CodexConfig(), "[mcp_servers.fs]\ncommand = \"npx\"\n")

	p := models.Provider{ID: "p1", Name: "Duck Coding", SettingsConfig: map[string]any{
		"auth":   map[string]any{"OPENAI_API_KEY": "sk-1"},
		"config": "base_url = \"https://duck.example/v1\"\nmodel = \"gpt-5\"\nmodel_reasoning_effort = \"high\"\n",
	}}
	if err := a.Write(p, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var doc map[string]any
	if _, err := toml.Decode(readFile(t, paths.CodexConfig()), &doc); err != nil {
		t.Fatalf("live config.toml is not valid TOML: %v", err)
	}
	if doc["model_provider"] != "duckcoding" || doc["model_reasoning_effort"] != "high" {
		t.Errorf("unexpected root keys: %v", doc)
	}
	if _, ok := doc["mcp_servers"]; !ok {
		t.Error("unrelated table lost")
	}
	if gjson.Get(readFile(t, paths.CodexAuth()), "OPENAI_API_KEY").Str != "sk-1" {
		t.Error("auth.json not written")
	}

	captured, err := a.Capture(p, "")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	snippet := captured["config"].(string)
	for _, want := range []string{`base_url = "https://duck.example/v1"`, `model = "gpt-5"`, `model_reasoning_effort = "high"`} {
		if !strings.Contains(snippet, want) {
			t.Errorf("captured snippet lacks %s:\n%s", want, snippet)
		}
	}
	if strings.Contains(snippet, "mcp_servers") {
		t.Errorf("captured snippet holds unrelated tables:\n%s", snippet)
	}
}

func TestCodexOpenAIAuthRetiresAuthFile(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppCodex)
	writeFile(t, paths.CodexAuth(), `{"OPENAI_API_KEY":"old"}`)

	p := models.Provider{ID: "official", Name: "OpenAI", SettingsConfig: map[string]any{
		"config": "base_url = \"https://api.openai.com/v1\"\nrequires_openai_auth = true\n",
	}}
	if err := a.Write(p, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(paths.CodexAuth()); !os.IsNotExist(err) {
		t.Error("auth.json should have been removed")
	}
	backups, _ := filepath.Glob(paths.CodexAuth() + ".cc-switch.bak.*")
	if len(backups) != 1 {
		t.Fatalf("Expected one auth.json backup, found %v", backups)
	}
	if readFile(t, backups[0]) != `{"OPENAI_API_KEY":"old"}` {
		t.Error("backup content differs from the original")
	}
}

func TestCodexEnvKeyProviderKeepsAuthFile(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppCodex)
	writeFile(t, paths.CodexAuth(), `{"OPENAI_API_KEY":"old"}`)

	p := models.Provider{ID: "azure", Name: "Azure", SettingsConfig: map[string]any{
		"config": "base_url = \"https://azure.example/v1\"\nenv_key = \"AZURE_KEY\"\n",
	}}
	if err := a.Write(p, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(paths.CodexAuth()); err != nil {
		t.Errorf("auth.json should be left alone: %v", err)
	}
}

func TestCodexOpenAIHostWithEnvKeyKeepsAuthFile(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppCodex)
	writeFile(t, paths.CodexAuth(), `{"OPENAI_API_KEY":"old"}`)

	p := models.Provider{ID: "proxy", Name: "Corp Proxy", SettingsConfig: map[string]any{
		"config": "base_url = \"https://api.openai.com/v1\"\nenv_key = \"MY_KEY\"\n",
	}}
	if err := a.Write(p, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(paths.CodexAuth()); err != nil {
		t.Errorf("auth.json should be left alone: %v", err)
	}
	if text := readFile(t, paths.CodexConfig()); !strings.Contains(text, `env_key = "MY_KEY"`) {
		t.Errorf("env_key missing from config.toml:\n%s", text)
	}
}

func TestCodexExtractCommon(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppCodex)
	writeFile(t, paths.CodexConfig(), "model = \"gpt-5\"\nmodel_provider = \"x\"\ndisable_response_storage = true\n")

	extractor, ok := a.(CommonExtractor)
	if !ok {
		t.Fatal("codex adapter does not extract common config")
	}
	got, err := extractor.ExtractCommon()
	if err != nil {
		t.Fatal(err)
	}
	if got != "disable_response_storage = true" {
		t.Errorf("ExtractCommon = %q", got)
	}
}

func TestGeminiWriteAPIKey(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppGemini)
	writeFile(t, paths.GeminiSettings(), `{"theme": "dark", "security": {"auth": {"selectedType": "oauth-personal"}}}`)

	p := models.Provider{ID: "relay", Name: "Relay", SettingsConfig: map[string]any{
		"env":    map[string]any{GeminiAPIKeyEnv: "key-1", "GOOGLE_GEMINI_BASE_URL": "https://relay"},
		"config": map[string]any{"model": "gemini-2.5-pro"},
	}}
	if err := a.Write(p, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	env, err := godotenv.Read(paths.GeminiEnv())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{GeminiAPIKeyEnv: "key-1", "GOOGLE_GEMINI_BASE_URL": "https://relay"}
	if !reflect.DeepEqual(env, want) {
		t.Errorf(".env = %v, want %v", env, want)
	}
	settings := readFile(t, paths.GeminiSettings())
	if gjson.Get(settings, "theme").Str != "dark" || gjson.Get(settings, "model").Str != "gemini-2.5-pro" {
		t.Errorf("settings.json not merged: %s", settings)
	}
	if gjson.Get(settings, selectedTypePath).Str != string(GeminiAuthAPIKey) {
		t.Errorf("selectedType = %s", gjson.Get(settings, selectedTypePath).Str)
	}
}

func TestGeminiWriteRequiresAPIKey(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppGemini)
	p := models.Provider{ID: "relay", Name: "Relay", SettingsConfig: map[string]any{
		"env": map[string]any{GeminiAPIKeyEnv: "  "},
	}}
	err := a.Write(p, "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(paths.GeminiEnv()); !os.IsNotExist(statErr) {
		t.Error(".env written despite the failed check")
	}
}

func TestGeminiGoogleOfficial(t *testing.T) {
	tests := []struct {
		name     string
		provider models.Provider
		want     GeminiAuthType
	}{
		{"partner key", models.Provider{Name: "Anything", Meta: &models.ProviderMeta{PartnerPromotionKey: "Google-Official"}}, GeminiAuthOAuth},
		{"plain google", models.Provider{Name: "Google"}, GeminiAuthOAuth},
		{"google prefix", models.Provider{Name: "google oauth"}, GeminiAuthOAuth},
		{"googleish", models.Provider{Name: "Googlers relay"}, GeminiAuthAPIKey},
		{"relay", models.Provider{Name: "Relay"}, GeminiAuthAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectGeminiAuth(tt.provider); got != tt.want {
				t.Errorf("DetectGeminiAuth = %s, want %s", got, tt.want)
			}
		})
	}

	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppGemini)
	writeFile(t, paths.GeminiEnv(), "GEMINI_API_KEY=stale\n")
	p := models.Provider{ID: "google", Name: "Google", SettingsConfig: map[string]any{"env": map[string]any{}}}
	if err := a.Write(p, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.TrimSpace(readFile(t, paths.GeminiEnv())) != "" {
		t.Error(".env should be cleared for Google official")
	}
	if gjson.Get(readFile(t, paths.GeminiSettings()), selectedTypePath).Str != string(GeminiAuthOAuth) {
		t.Error("selectedType not set to oauth-personal")
	}
}

func TestGeminiCaptureStripsCommon(t *testing.T) {
	r, paths := setupRegistry(t)
	a := mustAdapter(t, r, models.AppGemini)
	writeFile(t, paths.GeminiEnv(), "GEMINI_API_KEY=k\nGEMINI_MODEL=gemini-2.5-pro\n")

	p := models.Provider{ID: "relay", Name: "Relay"}
	captured, err := a.Capture(p, `{"env": {"GEMINI_MODEL": "gemini-2.5-pro"}}`)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	want := map[string]any{
		"env":    map[string]any{GeminiAPIKeyEnv: "k"},
		"config": map[string]any{},
	}
	if !reflect.DeepEqual(captured, want) {
		t.Errorf("Capture = %v, want %v", captured, want)
	}
}

func TestSnapshotRestore(t *testing.T) {
	r, paths := setupRegistry(t)
	writeFile(t, paths.CodexAuth(), `{"OPENAI_API_KEY":"before"}`)

	snap, err := r.Snapshot(models.AppCodex)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if !snap.Existed(paths.CodexAuth()) || snap.Existed(paths.CodexConfig()) {
		t.Fatal("snapshot recorded the wrong file states")
	}

	writeFile(t, paths.CodexAuth(), `{"OPENAI_API_KEY":"after"}`)
	writeFile(t, paths.CodexConfig(), "model = \"x\"\n")

	if err := snap.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if readFile(t, paths.CodexAuth()) != `{"OPENAI_API_KEY":"before"}` {
		t.Error("auth.json not restored")
	}
	if _, err := os.Stat(paths.CodexConfig()); !os.IsNotExist(err) {
		t.Error("config.toml should be removed again")
	}
}

func TestLegacyFiles(t *testing.T) {
	r, paths := setupRegistry(t)
	p := models.Provider{ID: "delete", Name: "My/Relay"}

	claude := mustAdapter(t, r, models.AppClaude).LegacyFiles(p)
	wantClaude := []string{
		filepath.Join(paths.ClaudeDir, "settings-my-relay.json"),
		filepath.Join(paths.ClaudeDir, "settings-delete.json"),
	}
	if !reflect.DeepEqual(claude, wantClaude) {
		t.Errorf("claude legacy files = %v, want %v", claude, wantClaude)
	}

	codex := mustAdapter(t, r, models.AppCodex).LegacyFiles(models.Provider{ID: "relay", Name: "Relay"})
	wantCodex := []string{
		filepath.Join(paths.CodexDir, "auth-relay.json"),
		filepath.Join(paths.CodexDir, "config-relay.toml"),
	}
	if !reflect.DeepEqual(codex, wantCodex) {
		t.Errorf("codex legacy files = %v, want %v", codex, wantCodex)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(`A<b>:"c"/d\e|f?g*`); got != "a-b---c--d-e-f-g-" {
		t.Errorf("SanitizeFileName = %q", got)
	}
}

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(ClaudeDirEnv, "")
	t.Setenv(CodexDirEnv, filepath.Join(home, "codex-home"))

	paths, err := DefaultPaths(func(app models.AppType) string {
		if app == models.AppGemini {
			return filepath.Join(home, "g")
		}
		return ""
	})
	if err != nil {
		t.Fatal(err)
	}
	want := Paths{
		ClaudeDir: filepath.Join(home, ".claude"),
		CodexDir:  filepath.Join(home, "codex-home"),
		GeminiDir: filepath.Join(home, "g"),
	}
	if paths != want {
		t.Errorf("DefaultPaths = %+v, want %+v", paths, want)
	}
}

func TestRegistryUnknownApp(t *testing.T) {
	r, _ := setupRegistry(t)
	if _, err := r.Get("cursor"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	if got := r.List(); len(got) != 3 {
		t.Errorf("List = %v", got)
	}
}
