package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"ccswitch/internal/apperr"
)

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AtomicWrite writes content to a temporary file in the target directory and
// renames it into place, so readers never observe a half-written file.
func AtomicWrite(path string, content []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.IO(dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperr.IO(path, err)
	}
	tmpName := tmpFile.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return apperr.IO(tmpName, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return apperr.IO(tmpName, err)
	}
	if err := tmpFile.Close(); err != nil {
		return apperr.IO(tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return apperr.IO(tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		if runtime.GOOS != "windows" {
			return apperr.IO(path, err)
		}
		// Windows refuses to rename over a file another process holds open
		var last = err
		for i := 0; i < 5; i++ {
			_ = os.Remove(path)
			if last = os.Rename(tmpName, path); last == nil {
				return nil
			}
			time.Sleep(50 * time.Millisecond)
		}
		return apperr.IO(path, last)
	}
	return nil
}

// ReadTextFile reads a whole file as text
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.IO(path, err)
	}
	return string(data), nil
}

// WriteTextFile atomically replaces path with text
func WriteTextFile(path, text string) error {
	return AtomicWrite(path, []byte(text), 0o600)
}

// ReadJSONFile decodes a JSON file into a generic value
func ReadJSONFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.IO(path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, apperr.Config("json.parse_failed",
			"解析 JSON 文件失败 "+path+": "+err.Error(),
			"failed to parse JSON file "+path+": "+err.Error())
	}
	return v, nil
}

// WriteJSONFile atomically writes v as indented JSON
func WriteJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperr.Config("json.serialize_failed",
			"序列化 JSON 失败: "+err.Error(),
			"failed to serialize JSON: "+err.Error())
	}
	return AtomicWrite(path, append(data, '\n'), 0o600)
}

// DeleteFile removes path; a missing file is not an error
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.IO(path, err)
	}
	return nil
}
