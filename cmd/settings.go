package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/config"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func loadSettings() (*config.AppSettings, string, error) {
	path, err := config.DefaultSettingsPath()
	if err != nil {
		return nil, "", err
	}
	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, "", err
	}
	return settings, path, nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show cc-switch settings",
	Long: `Show the values in settings.yaml.

  live_sync           auto, always or never
  claude_config_dir   override for ~/.claude
  codex_config_dir    override for ~/.codex
  gemini_config_dir   override for ~/.gemini`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, _, err := loadSettings()
		if err != nil {
			return err
		}
		for _, key := range config.SettingKeys {
			value, _ := settings.Get(key)
			if value == "" {
				value = dimStyle.Render("(default)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", key, value)
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change one value in settings.yaml. Omit the value to reset it.

Examples:
  cc-switch settings set live_sync always
  cc-switch settings set codex_config_dir ~/work/.codex`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, path, err := loadSettings()
		if err != nil {
			return err
		}
		var value string
		if len(args) == 2 {
			value = args[1]
		}
		if err := settings.Set(args[0], value); err != nil {
			return err
		}
		if err := settings.Save(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Updated %s", args[0])))
		return nil
	},
}
