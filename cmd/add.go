package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/config/models"
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().String("id", "", "Provider id (generated when empty)")
	addCmd.Flags().StringP("name", "n", "", "Display name")
	addCmd.Flags().StringP("settings", "s", "", "settings_config JSON, @file or - for stdin")
	addCmd.Flags().StringP("website", "w", "", "Provider website URL")
	addCmd.Flags().StringP("category", "c", "", "Provider category")
	addCmd.Flags().Bool("no-common", false, "Do not merge the common config snippet into this provider")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("settings")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new provider",
	Long: `Add a new provider for the selected app.

The settings are the provider's settings_config:
  claude  the settings.json object, e.g. {"env":{"ANTHROPIC_AUTH_TOKEN":"sk-...","ANTHROPIC_BASE_URL":"https://..."}}
  codex   {"auth":{...},"config":"<config.toml snippet>"}
  gemini  {"env":{"GEMINI_API_KEY":"..."},"config":{...}}

The first provider of an app becomes current and is written to the live files.

Examples:
  cc-switch add --name relay --settings @relay.json
  cc-switch --app codex add --name "Duck Coding" --settings -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		name, _ := flags.GetString("name")
		rawSettings, _ := flags.GetString("settings")
		website, _ := flags.GetString("website")
		category, _ := flags.GetString("category")
		noCommon, _ := flags.GetBool("no-common")

		settings, err := readSettings(cmd, rawSettings)
		if err != nil {
			return err
		}
		p := models.Provider{
			ID:             id,
			Name:           name,
			SettingsConfig: settings,
			WebsiteURL:     website,
			Category:       category,
		}
		if noCommon {
			apply := false
			p.Meta = &models.ProviderMeta{ApplyCommonConfig: &apply}
		}

		m, err := openManager()
		if err != nil {
			return err
		}
		added, err := m.Add(app, p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Added %s provider: %s (%s)", app, added.Name, added.ID)))
		return nil
	},
}
