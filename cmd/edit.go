package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/config/models"
)

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringP("name", "n", "", "New display name")
	editCmd.Flags().StringP("settings", "s", "", "New settings_config JSON, @file or - for stdin")
	editCmd.Flags().StringP("website", "w", "", "New website URL")
	editCmd.Flags().StringP("category", "c", "", "New category")
	editCmd.Flags().Bool("common", true, "Merge the common config snippet into this provider")
}

var editCmd = &cobra.Command{
	Use:     "edit [id]",
	Aliases: []string{"update"},
	Short:   "Edit a provider",
	Long: `Edit a stored provider. Only the flags given are changed.

When the provider is current its live files are rewritten.

Examples:
  cc-switch edit relay --name "Relay (backup)"
  cc-switch edit relay --settings @relay.json
  cc-switch edit relay --common=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		p, err := m.Get(app, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		changed := false
		if flags.Changed("name") {
			p.Name, _ = flags.GetString("name")
			changed = true
		}
		if flags.Changed("settings") {
			raw, _ := flags.GetString("settings")
			if p.SettingsConfig, err = readSettings(cmd, raw); err != nil {
				return err
			}
			changed = true
		}
		if flags.Changed("website") {
			p.WebsiteURL, _ = flags.GetString("website")
			changed = true
		}
		if flags.Changed("category") {
			p.Category, _ = flags.GetString("category")
			changed = true
		}
		if flags.Changed("common") {
			apply, _ := flags.GetBool("common")
			if p.Meta == nil {
				p.Meta = &models.ProviderMeta{}
			}
			p.Meta.ApplyCommonConfig = &apply
			changed = true
		}
		if !changed {
			return fmt.Errorf("nothing to change: pass at least one of --name, --settings, --website, --category, --common")
		}

		if _, err := m.Update(app, p); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Updated %s provider: %s", app, p.ID)))
		return nil
	},
}
