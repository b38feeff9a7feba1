package validation

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"ccswitch/config/models"
	"ccswitch/internal/apperr"
)

// SettingsValidator is an extra per-app check run after the shape check
type SettingsValidator func(settings any) error

// Validator rejects providers whose settings_config cannot be written live
type Validator struct {
	input *InputValidator
	extra map[models.AppType][]SettingsValidator
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{
		input: NewInputValidator(),
		extra: make(map[models.AppType][]SettingsValidator),
	}
}

// Register adds an app specific settings check
func (v *Validator) Register(app models.AppType, check SettingsValidator) {
	v.extra[app] = append(v.extra[app], check)
}

// ValidateProvider checks a provider before any mutation is attempted
func (v *Validator) ValidateProvider(app models.AppType, p models.Provider) error {
	if err := v.input.ValidateName(p.Name); err != nil {
		return err
	}
	if p.ID != "" {
		if err := v.input.ValidateID(p.ID); err != nil {
			return err
		}
	}
	if err := v.ValidateSettings(app, p.SettingsConfig); err != nil {
		return err
	}
	for _, check := range v.extra[app] {
		if err := check(p.SettingsConfig); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSettings checks the app dependent shape of settings_config
func (v *Validator) ValidateSettings(app models.AppType, settings any) error {
	obj, ok := settings.(map[string]any)
	if !ok {
		return apperr.Validation("provider.settings.not_object",
			"配置必须是 JSON 对象",
			"settings_config must be a JSON object")
	}
	switch app {
	case models.AppCodex:
		return validateCodex(obj)
	case models.AppGemini:
		return validateGemini(obj)
	}
	return nil
}

func validateGemini(obj map[string]any) error {
	if env, present := obj["env"]; present && env != nil {
		if _, ok := env.(map[string]any); !ok {
			return apperr.Validation("provider.gemini.env.not_object",
				"Gemini env 必须是 JSON 对象",
				"Gemini env must be a JSON object")
		}
	}
	if cfg, present := obj["config"]; present && cfg != nil {
		if _, ok := cfg.(map[string]any); !ok {
			return apperr.Validation("provider.gemini.config.not_object",
				"Gemini config 必须是 JSON 对象",
				"Gemini config must be a JSON object")
		}
	}
	return nil
}

func validateCodex(obj map[string]any) error {
	if auth, present := obj["auth"]; present && auth != nil {
		if _, ok := auth.(map[string]any); !ok {
			return apperr.Validation("provider.codex.auth.not_object",
				"Codex auth 必须是 JSON 对象",
				"Codex auth must be a JSON object")
		}
	}
	if cfg, present := obj["config"]; present && cfg != nil {
		text, ok := cfg.(string)
		if !ok {
			return apperr.Validation("provider.codex.config.not_string",
				"Codex config 必须是字符串",
				"Codex config must be a string")
		}
		if err := ValidateTOML(text); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTOML reports whether text is valid TOML syntax; blank text is valid
func ValidateTOML(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var doc map[string]any
	if _, err := toml.Decode(text, &doc); err != nil {
		return apperr.Validation("provider.codex.config.invalid_toml",
			fmt.Sprintf("config.toml 语法错误: %v", err),
			fmt.Sprintf("invalid config.toml syntax: %v", err))
	}
	return nil
}
