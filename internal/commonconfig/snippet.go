package commonconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"ccswitch/config/models"
	"ccswitch/internal/apperr"
)

// ParseJSONSnippet parses a common snippet for a JSON flavored app.
// Blank text yields a nil map.
func ParseJSONSnippet(app models.AppType, text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, apperr.Validation("common_config.invalid_json",
			fmt.Sprintf("%s 通用配置片段不是有效的 JSON: %v", app, err),
			fmt.Sprintf("%s common config snippet is not valid JSON: %v", app, err))
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, apperr.Validation("common_config.not_object",
			fmt.Sprintf("%s 通用配置片段必须是 JSON 对象", app),
			fmt.Sprintf("%s common config snippet must be a JSON object", app))
	}
	return obj, nil
}

// ParseTOMLSnippet parses a common snippet for the Codex config.toml.
// Blank text yields a nil map.
func ParseTOMLSnippet(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc := map[string]any{}
	if _, err := toml.Decode(text, &doc); err != nil {
		return nil, apperr.Validation("common_config.invalid_toml",
			fmt.Sprintf("Codex 通用配置片段不是有效的 TOML: %v", err),
			fmt.Sprintf("Codex common config snippet is not valid TOML: %v", err))
	}
	return doc, nil
}

// ParseSnippet parses a common snippet in the representation used by app
func ParseSnippet(app models.AppType, text string) (map[string]any, error) {
	if app == models.AppCodex {
		return ParseTOMLSnippet(text)
	}
	return ParseJSONSnippet(app, text)
}
