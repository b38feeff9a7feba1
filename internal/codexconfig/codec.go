// Package codexconfig converts between the full ~/.codex/config.toml and the
// minimal per-provider snippet stored in a Codex provider's settings_config.
package codexconfig

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"ccswitch/internal/apperr"
	"ccswitch/internal/commonconfig"
)

const (
	// DefaultModel is written when a snippet names no model
	DefaultModel = "gpt-5.2-codex"
	// DefaultWireAPI is written when a snippet names no wire_api
	DefaultWireAPI = "chat"

	openAIKeyEnv = "OPENAI_API_KEY"
)

// keys owned by the provider table rather than the document root
var providerKeys = map[string]bool{
	"base_url":             true,
	"wire_api":             true,
	"env_key":              true,
	"requires_openai_auth": true,
}

// ProviderKey derives the model_providers table key from a display name:
// lowercase letters and digits only ("Duck Coding" -> "duckcoding").
func ProviderKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return "custom"
	}
	return b.String()
}

func decode(text, what string) (map[string]any, error) {
	doc := map[string]any{}
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	if _, err := toml.Decode(text, &doc); err != nil {
		return nil, apperr.Config("codex.config.parse_failed",
			fmt.Sprintf("解析 %s 失败: %v", what, err),
			fmt.Sprintf("failed to parse %s: %v", what, err))
	}
	return doc, nil
}

func encode(doc map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return "", apperr.Config("codex.config.serialize_failed",
			fmt.Sprintf("序列化 config.toml 失败: %v", err),
			fmt.Sprintf("failed to serialize config.toml: %v", err))
	}
	return buf.String(), nil
}

// renderLine renders one `key = value` line with TOML quoting
func renderLine(key string, value any) (string, error) {
	data, err := toml.Marshal(map[string]any{key: value})
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func stringAt(table map[string]any, key string) (string, bool) {
	if table == nil {
		return "", false
	}
	s, ok := table[key].(string)
	return s, ok
}

func boolAt(table map[string]any, key string) (bool, bool) {
	if table == nil {
		return false, false
	}
	b, ok := table[key].(bool)
	return b, ok
}

func isTable(v any) bool {
	switch v.(type) {
	case map[string]any, []map[string]any:
		return true
	}
	return false
}

// Extract pulls the active provider's minimal snippet out of a live
// config.toml: base_url, model, wire_api and the auth mode marker, read from
// [model_providers.<model_provider>] with the document root as fallback.
//
// Extra root scalars named in previous (a snippet stored earlier for the same
// provider) are carried over with their live values.
func Extract(liveTOML, previous string) (string, error) {
	if strings.TrimSpace(liveTOML) == "" {
		return "", nil
	}
	root, err := decode(liveTOML, "config.toml")
	if err != nil {
		return "", err
	}

	var table map[string]any
	if key, ok := stringAt(root, "model_provider"); ok {
		if providers, ok := root["model_providers"].(map[string]any); ok {
			table, _ = providers[key].(map[string]any)
		}
	}
	lookupString := func(key string) (string, bool) {
		if v, ok := stringAt(table, key); ok {
			return v, true
		}
		return stringAt(root, key)
	}
	lookupBool := func(key string) (bool, bool) {
		if v, ok := boolAt(table, key); ok {
			return v, true
		}
		return boolAt(root, key)
	}

	model, ok := stringAt(root, "model")
	if !ok {
		model = DefaultModel
	}
	wireAPI, ok := lookupString("wire_api")
	if !ok {
		wireAPI = DefaultWireAPI
	}
	baseURL, _ := lookupString("base_url")
	envKey, _ := lookupString("env_key")
	envKey = strings.TrimSpace(envKey)
	requiresAuth, hasRequires := lookupBool("requires_openai_auth")

	type kv struct {
		key   string
		value any
	}
	var fields []kv
	if b := strings.TrimSpace(baseURL); b != "" {
		fields = append(fields, kv{"base_url", b})
	}
	fields = append(fields, kv{"model", strings.TrimSpace(model)}, kv{"wire_api", strings.TrimSpace(wireAPI)})
	switch {
	case hasRequires && requiresAuth:
		fields = append(fields, kv{"requires_openai_auth", true})
	case hasRequires:
		if envKey != "" {
			fields = append(fields, kv{"env_key", envKey})
		}
		fields = append(fields, kv{"requires_openai_auth", false})
	case envKey != "":
		// an explicit false keeps Project from inferring OpenAI auth
		fields = append(fields, kv{"env_key", envKey}, kv{"requires_openai_auth", false})
	}

	prev, err := decode(previous, "provider config snippet")
	if err != nil {
		prev = map[string]any{}
	}
	var extras []string
	for key, value := range prev {
		if providerKeys[key] || key == "model" || key == "model_provider" || key == "name" || isTable(value) {
			continue
		}
		if live, ok := root[key]; ok && !isTable(live) {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		fields = append(fields, kv{key, root[key]})
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		line, err := renderLine(f.key, f.value)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// ExtractCommon returns everything in a live config.toml that does not
// belong to a provider: the document minus model, model_provider, base_url
// and the whole model_providers table.
func ExtractCommon(liveTOML string) (string, error) {
	if strings.TrimSpace(liveTOML) == "" {
		return "", nil
	}
	doc, err := decode(liveTOML, "config.toml")
	if err != nil {
		return "", err
	}
	for _, key := range []string{"model", "model_provider", "base_url", "model_providers"} {
		delete(doc, key)
	}
	if len(doc) == 0 {
		return "", nil
	}
	text, err := encode(doc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type providerFields struct {
	baseURL      string
	model        string
	wireAPI      string
	envKey       string
	requiresAuth bool
}

// resolve applies the write-time defaults to a decoded snippet
func resolve(stored map[string]any, hasAuth bool) providerFields {
	var f providerFields
	f.baseURL, _ = stringAt(stored, "base_url")

	var ok bool
	if f.model, ok = stringAt(stored, "model"); !ok {
		f.model = DefaultModel
	}
	if f.wireAPI, ok = stringAt(stored, "wire_api"); !ok {
		f.wireAPI = DefaultWireAPI
	}
	envKey, _ := stringAt(stored, "env_key")
	f.envKey = strings.TrimSpace(envKey)
	if f.requiresAuth, ok = boolAt(stored, "requires_openai_auth"); !ok {
		f.requiresAuth = f.envKey == openAIKeyEnv && hasAuth
	}
	return f
}

// RequiresOpenAIAuth reports whether a provider snippet resolves to the
// OpenAI auth mode (Codex's own credential store instead of an env var)
func RequiresOpenAIAuth(snippet string, hasAuth bool) (bool, error) {
	stored, err := decode(snippet, "provider config snippet")
	if err != nil {
		return false, err
	}
	return resolve(stored, hasAuth).requiresAuth, nil
}

// ProjectOptions carries what Project needs beyond the two documents
type ProjectOptions struct {
	// ProviderName is the display name the table key is derived from
	ProviderName string
	// HasAuth reports a non-empty auth object; with env_key OPENAI_API_KEY it
	// implies requires_openai_auth
	HasAuth bool
	// Common is the app's common config snippet, merged over the base document
	Common string
}

// Project writes a provider snippet into a full config.toml. Root keys and
// tables of baseLive that are not provider-owned are preserved.
func Project(snippet, baseLive string, opts ProjectOptions) (string, error) {
	stored, err := decode(snippet, "provider config snippet")
	if err != nil {
		return "", err
	}
	doc, err := decode(baseLive, "config.toml")
	if err != nil {
		return "", err
	}
	common, err := commonconfig.ParseTOMLSnippet(opts.Common)
	if err != nil {
		return "", err
	}
	if common != nil {
		commonconfig.Merge(commonconfig.TOMLTree(doc), commonconfig.TOMLTree(common))
	}

	fields := resolve(stored, opts.HasAuth)

	for key := range providerKeys {
		delete(doc, key)
	}

	key := ProviderKey(opts.ProviderName)
	doc["model_provider"] = key
	doc["model"] = fields.model
	for k, v := range stored {
		if providerKeys[k] || k == "model" || k == "model_provider" || k == "name" || isTable(v) {
			continue
		}
		doc[k] = v
	}

	table := map[string]any{
		"name":     key,
		"wire_api": fields.wireAPI,
	}
	if fields.baseURL != "" {
		table["base_url"] = fields.baseURL
	}
	if fields.requiresAuth {
		table["requires_openai_auth"] = true
	} else if fields.envKey != "" {
		table["env_key"] = fields.envKey
	}

	providers, ok := doc["model_providers"].(map[string]any)
	if !ok {
		providers = map[string]any{}
		doc["model_providers"] = providers
	}
	providers[key] = table

	return encode(doc)
}

// BaseURL returns the base_url a provider snippet resolves to, or "" when
// the snippet names none or does not parse
func BaseURL(snippet string) string {
	stored, err := decode(snippet, "provider config snippet")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(resolve(stored, false).baseURL)
}
