package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ccswitch/internal/apperr"
)

// readText resolves a flag value: "@file" reads the file, "-" reads stdin,
// anything else is taken literally
func readText(cmd *cobra.Command, raw string) (string, error) {
	switch {
	case raw == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(raw, "@"):
		path := raw[1:]
		data, err := os.ReadFile(path)
		if err != nil {
			return "", apperr.IO(path, err)
		}
		return string(data), nil
	}
	return raw, nil
}

// readSettings parses a settings_config JSON value given inline, as @file or as -
func readSettings(cmd *cobra.Command, raw string) (any, error) {
	text, err := readText(cmd, raw)
	if err != nil {
		return nil, err
	}
	var settings any
	if err := json.Unmarshal([]byte(text), &settings); err != nil {
		return nil, apperr.Validation("cli.settings.invalid_json",
			fmt.Sprintf("settings 不是合法的 JSON: %v", err),
			fmt.Sprintf("settings is not valid JSON: %v", err))
	}
	return settings, nil
}
