package codexconfig

import (
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const azureLive = `model_provider = "azure"
model = "gpt-4"
disable_response_storage = true

[model_providers.azure]
name = "Azure OpenAI"
base_url = "https://azure.example/v1"
wire_api = "responses"
env_key = "AZURE_KEY"

[mcp_servers.my_server]
command = "npx"
args = ["-y", "server"]
`

func mustDecode(t *testing.T, text string) map[string]any {
	t.Helper()
	doc := map[string]any{}
	if _, err := toml.Decode(text, &doc); err != nil {
		t.Fatalf("invalid TOML %q: %v", text, err)
	}
	return doc
}

func TestProviderKey(t *testing.T) {
	tests := map[string]string{
		"Duck Coding":    "duckcoding",
		"OpenAI-Proxy 2": "openaiproxy2",
		"智谱 GLM":         "智谱glm",
		"---":            "custom",
	}
	for in, want := range tests {
		if got := ProviderKey(in); got != want {
			t.Errorf("ProviderKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		live     string
		previous string
		want     string
	}{
		{
			name: "active provider table",
			live: azureLive,
			want: "base_url = \"https://azure.example/v1\"\nmodel = \"gpt-4\"\nwire_api = \"responses\"\n" +
				"env_key = \"AZURE_KEY\"\nrequires_openai_auth = false",
		},
		{
			name: "legacy root keys and defaults",
			live: "base_url = \"https://legacy.example\"\n",
			want: "base_url = \"https://legacy.example\"\nmodel = \"gpt-5.2-codex\"\nwire_api = \"chat\"",
		},
		{
			name: "openai auth marker",
			live: "model_provider = \"o\"\nmodel = \"m\"\n[model_providers.o]\nname = \"o\"\nwire_api = \"responses\"\nrequires_openai_auth = true\n",
			want: "model = \"m\"\nwire_api = \"responses\"\nrequires_openai_auth = true",
		},
		{
			name:     "extra root scalar carried from previous snippet",
			live:     "model = \"m\"\nmodel_reasoning_effort = \"high\"\nunrelated = 1\n",
			previous: "model = \"old\"\nmodel_reasoning_effort = \"low\"\n",
			want:     "model = \"m\"\nwire_api = \"chat\"\nmodel_reasoning_effort = \"high\"",
		},
		{
			name: "blank live",
			live: "  \n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.live, tt.previous)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestExtractRejectsInvalidTOML(t *testing.T) {
	if _, err := Extract("model = ", ""); err == nil {
		t.Error("Expected parse error")
	}
}

func TestExtractCommon(t *testing.T) {
	common, err := ExtractCommon(azureLive)
	if err != nil {
		t.Fatalf("ExtractCommon failed: %v", err)
	}
	if !strings.Contains(common, "disable_response_storage = true") {
		t.Errorf("top-level common key lost:\n%s", common)
	}
	if !strings.Contains(common, "[mcp_servers.my_server]") {
		t.Errorf("mcp_servers table lost:\n%s", common)
	}
	for _, line := range strings.Split(common, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "model_provider") || strings.HasPrefix(line, "model =") {
			t.Errorf("provider key leaked into common: %s", line)
		}
	}
	if strings.Contains(common, "[model_providers") {
		t.Errorf("model_providers leaked into common:\n%s", common)
	}

	empty, err := ExtractCommon("model = \"m\"\nmodel_provider = \"x\"\n")
	if err != nil || empty != "" {
		t.Errorf("ExtractCommon of provider-only doc = %q, %v", empty, err)
	}
}

func TestProject(t *testing.T) {
	snippet, err := Extract(azureLive, "")
	if err != nil {
		t.Fatal(err)
	}

	base := "base_url = \"https://stray\"\nwire_api = \"stray\"\n" + azureLive
	out, err := Project(snippet, base, ProjectOptions{ProviderName: "Duck Coding"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	doc := mustDecode(t, out)

	if doc["model_provider"] != "duckcoding" || doc["model"] != "gpt-4" {
		t.Errorf("root keys = %v / %v", doc["model_provider"], doc["model"])
	}
	for _, stray := range []string{"base_url", "wire_api", "env_key", "requires_openai_auth"} {
		if _, ok := doc[stray]; ok {
			t.Errorf("stray root key %s not removed", stray)
		}
	}
	table := doc["model_providers"].(map[string]any)["duckcoding"].(map[string]any)
	want := map[string]any{
		"name":     "duckcoding",
		"base_url": "https://azure.example/v1",
		"wire_api": "responses",
		"env_key":  "AZURE_KEY",
	}
	if !reflect.DeepEqual(table, want) {
		t.Errorf("provider table = %v, want %v", table, want)
	}
	if doc["disable_response_storage"] != true {
		t.Error("unrelated root key lost")
	}

	again, err := Extract(out, snippet)
	if err != nil {
		t.Fatal(err)
	}
	if again != snippet {
		t.Errorf("Extract(Project(s)) =\n%s\nwant\n%s", again, snippet)
	}
}

func TestProjectAuthMode(t *testing.T) {
	tests := []struct {
		name     string
		snippet  string
		hasAuth  bool
		wantAuth any
		wantEnv  any
	}{
		{"openai key with auth infers openai auth", "env_key = \"OPENAI_API_KEY\"", true, true, nil},
		{"openai key without auth keeps env_key", "env_key = \"OPENAI_API_KEY\"", false, nil, "OPENAI_API_KEY"},
		{"explicit false wins over inference", "env_key = \"OPENAI_API_KEY\"\nrequires_openai_auth = false", true, nil, "OPENAI_API_KEY"},
		{"explicit true", "requires_openai_auth = true", false, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Project(tt.snippet, "", ProjectOptions{ProviderName: "P", HasAuth: tt.hasAuth})
			if err != nil {
				t.Fatalf("Project failed: %v", err)
			}
			table := mustDecode(t, out)["model_providers"].(map[string]any)["p"].(map[string]any)
			if got := table["requires_openai_auth"]; got != tt.wantAuth {
				t.Errorf("requires_openai_auth = %v, want %v", got, tt.wantAuth)
			}
			if got := table["env_key"]; got != tt.wantEnv {
				t.Errorf("env_key = %v, want %v", got, tt.wantEnv)
			}
			if table["wire_api"] != DefaultWireAPI {
				t.Errorf("wire_api = %v", table["wire_api"])
			}
		})
	}
}

func TestProjectKeepsEnvKeyForOpenAIHost(t *testing.T) {
	out, err := Project("base_url = \"https://api.openai.com/v1\"\nenv_key = \"MY_KEY\"\n", "",
		ProjectOptions{ProviderName: "Corp Proxy"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	table := mustDecode(t, out)["model_providers"].(map[string]any)["corpproxy"].(map[string]any)
	if table["env_key"] != "MY_KEY" {
		t.Errorf("env_key = %v, want MY_KEY", table["env_key"])
	}
	if table["wire_api"] != DefaultWireAPI {
		t.Errorf("wire_api = %v, want %s", table["wire_api"], DefaultWireAPI)
	}
	if _, ok := table["requires_openai_auth"]; ok {
		t.Error("requires_openai_auth should not be inferred from the host")
	}

	requires, err := RequiresOpenAIAuth("base_url = \"https://chatgpt.com/backend-api\"\n", false)
	if err != nil || requires {
		t.Errorf("RequiresOpenAIAuth = %v, %v; want false", requires, err)
	}
}

func TestProjectMergesCommon(t *testing.T) {
	out, err := Project("model = \"m\"\nmodel_reasoning_effort = \"high\"", "", ProjectOptions{
		ProviderName: "First",
		Common:       "disable_response_storage = true\n[mcp_servers.fetch]\ncommand = \"uvx\"",
	})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	doc := mustDecode(t, out)
	if doc["disable_response_storage"] != true {
		t.Errorf("common root key missing:\n%s", out)
	}
	if _, ok := doc["mcp_servers"].(map[string]any)["fetch"]; !ok {
		t.Errorf("common table missing:\n%s", out)
	}
	if doc["model_reasoning_effort"] != "high" {
		t.Errorf("extra snippet key not copied to root:\n%s", out)
	}

	if _, err := Project("", "", ProjectOptions{ProviderName: "x", Common: "bad = "}); err == nil {
		t.Error("Expected invalid common snippet to fail")
	}
}

// Extract never copies an unrelated [mcp_servers.*] table into the snippet,
// and projecting the snippet back leaves that table unchanged.
func TestPropertySnippetMinimality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("mcp servers survive extract and project", prop.ForAll(
		func(server, command, baseURL string) bool {
			live := map[string]any{
				"model_provider": "relay",
				"model":          "gpt-5",
				"model_providers": map[string]any{
					"relay": map[string]any{"name": "relay", "base_url": "https://" + baseURL + ".example", "wire_api": "responses"},
				},
				"mcp_servers": map[string]any{
					server: map[string]any{"command": command, "args": []any{"--port", "8080"}},
				},
			}
			liveText, err := encode(live)
			if err != nil {
				return false
			}

			snippet, err := Extract(liveText, "")
			if err != nil || strings.Contains(snippet, "mcp_servers") {
				return false
			}

			projected, err := Project(snippet, liveText, ProjectOptions{ProviderName: "Relay"})
			if err != nil {
				return false
			}
			before := map[string]any{}
			after := map[string]any{}
			if _, err := toml.Decode(liveText, &before); err != nil {
				return false
			}
			if _, err := toml.Decode(projected, &after); err != nil {
				return false
			}
			return reflect.DeepEqual(before["mcp_servers"], after["mcp_servers"])
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
