package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ccswitch/internal/apperr"
	"ccswitch/internal/utils"
)

const maxNameLength = 100

// InputValidator validates user input
type InputValidator struct {
}

// NewInputValidator creates a new InputValidator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateName checks a provider display name
func (iv *InputValidator) ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("provider.name.empty", "供应商名称不能为空", "provider name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperr.Validation("provider.name.too_long",
			fmt.Sprintf("供应商名称过长（最多 %d 个字符）", maxNameLength),
			fmt.Sprintf("provider name is too long (max %d characters)", maxNameLength))
	}
	return nil
}

// ValidateID checks a provider id; ids end up in file names
func (iv *InputValidator) ValidateID(id string) error {
	if strings.TrimSpace(id) != id || id == "" {
		return apperr.Validation("provider.id.invalid", "供应商 ID 不能为空或包含首尾空格", "provider id cannot be blank or padded")
	}
	if strings.ContainsAny(id, "<>:\"/\\|?*") || id == "." || id == ".." {
		return apperr.Validation("provider.id.invalid_chars", "供应商 ID 包含非法字符", "provider id contains invalid characters")
	}
	return nil
}

// ValidateEndpointURL checks a custom endpoint URL
func (iv *InputValidator) ValidateEndpointURL(url string) error {
	if !utils.ValidateURL(url) {
		return apperr.Validation("provider.endpoint.invalid_url",
			fmt.Sprintf("无效的端点地址: %s", url),
			fmt.Sprintf("invalid endpoint URL: %s", url))
	}
	return nil
}
