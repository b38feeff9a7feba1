package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/config"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the existing live configuration",
	Long:  "When the selected app has no providers yet, capture its live configuration as a provider named \"default\" and make it current",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		created, err := m.ImportDefault(app)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already has providers, nothing imported\n", app)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Imported live %s configuration as provider %q", app, config.DefaultProviderID)))
		return nil
	},
}
