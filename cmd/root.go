package cmd

import (
	"github.com/spf13/cobra"

	"ccswitch/config/models"
	"ccswitch/internal/apperr"
	"ccswitch/internal/log"
)

// Version information
var (
	version string
	commit  string
	date    string
)

// SetVersionInfo sets the version information
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

var (
	appFlag  string
	langFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cc-switch",
	Short: "Provider switcher for Claude Code, Codex and Gemini CLI",
	Long: `Manage named provider profiles for Claude Code, Codex and Gemini CLI and
switch between them by rewriting each tool's live configuration files.

The target tool is chosen with --app (claude, codex or gemini).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&appFlag, "app", "a", string(models.AppClaude), "Target app: claude, codex or gemini")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", string(apperr.LangEN), "Message language: en or zh")
}

// selectedApp parses the --app flag
func selectedApp() (models.AppType, error) {
	return models.ParseAppType(appFlag)
}

// language returns the --lang choice for error messages
func language() apperr.Language {
	if apperr.Language(langFlag) == apperr.LangZH {
		return apperr.LangZH
	}
	return apperr.LangEN
}

// Execute executes the root command
func Execute() error {
	rootCmd.Version = version

	rootCmd.SetVersionTemplate(`cc-switch {{.Version}}
Commit: ` + commit + `
Date: ` + date + `
`)

	err := rootCmd.Execute()
	if err != nil {
		log.Error("%s", apperr.Localize(err, language()))
	}
	return err
}
