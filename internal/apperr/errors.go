// Package apperr defines the error taxonomy shared by the provider engine,
// with Chinese and English messages for display.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller should react to it
type Kind string

const (
	// KindValidation: bad input shape, nothing was mutated
	KindValidation Kind = "validation"
	// KindNotFound: unknown provider id or app type, nothing was mutated
	KindNotFound Kind = "not_found"
	// KindIO: a file read or write failed
	KindIO Kind = "io"
	// KindConfig: stored or live content could not be interpreted
	KindConfig Kind = "config"
	// KindRollbackFailed: a failure plus a failure while undoing it; store
	// and live files may disagree and need manual reconciliation
	KindRollbackFailed Kind = "rollback_failed"
)

// Language selects the message variant returned by Localized
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// Error is the engine's error type
type Error struct {
	Kind Kind
	Key  string // stable message key, e.g. "provider.not_found"
	Zh   string
	En   string
	Path string // offending file, set for KindIO
	Err  error  // wrapped cause
}

func (e *Error) Error() string {
	return e.En
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Localized returns the message in the requested language
func (e *Error) Localized(lang Language) string {
	if lang == LangZH && e.Zh != "" {
		return e.Zh
	}
	return e.En
}

// Validation builds a validation error
func Validation(key, zh, en string) *Error {
	return &Error{Kind: KindValidation, Key: key, Zh: zh, En: en}
}

// NotFound builds a not-found error
func NotFound(key, zh, en string) *Error {
	return &Error{Kind: KindNotFound, Key: key, Zh: zh, En: en}
}

// Config builds an error for malformed stored or live content
func Config(key, zh, en string) *Error {
	return &Error{Kind: KindConfig, Key: key, Zh: zh, En: en}
}

// IO wraps a file system error together with the path it concerns
func IO(path string, err error) *Error {
	return &Error{
		Kind: KindIO,
		Key:  "io.failed",
		Zh:   fmt.Sprintf("文件操作失败 %s: %v", path, err),
		En:   fmt.Sprintf("file operation failed on %s: %v", path, err),
		Path: path,
		Err:  err,
	}
}

// Rollback builds the compound error reported when undoing a failure also failed
func Rollback(key string, primary, rollbackErr error) *Error {
	zhPrimary, zhRollback := zhMessage(primary), zhMessage(rollbackErr)
	var zh, en string
	switch key {
	case "config.save.rollback_failed":
		zh = fmt.Sprintf("保存配置失败: %s；回滚失败: %s", zhPrimary, zhRollback)
		en = fmt.Sprintf("Failed to save config: %v; rollback failed: %v", primary, rollbackErr)
	default:
		zh = fmt.Sprintf("后置操作失败: %s；回滚失败: %s", zhPrimary, zhRollback)
		en = fmt.Sprintf("Post-commit step failed: %v; rollback failed: %v", primary, rollbackErr)
	}
	return &Error{
		Kind: KindRollbackFailed,
		Key:  key,
		Zh:   zh,
		En:   en,
		Err:  errors.Join(primary, rollbackErr),
	}
}

// ProviderNotFound is the error for an unknown provider id
func ProviderNotFound(id string) *Error {
	return NotFound("provider.not_found",
		fmt.Sprintf("供应商不存在: %s", id),
		fmt.Sprintf("Provider not found: %s", id))
}

// AppNotFound is the error for an unknown app type
func AppNotFound(app string) *Error {
	return NotFound("provider.app_not_found",
		fmt.Sprintf("应用类型不存在: %s", app),
		fmt.Sprintf("App type not found: %s", app))
}

// Is reports whether err is (or wraps) an *Error of the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Localize renders any error for display, preferring the localized text
func Localize(err error, lang Language) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Localized(lang)
	}
	return err.Error()
}

func zhMessage(err error) string {
	return Localize(err, LangZH)
}
