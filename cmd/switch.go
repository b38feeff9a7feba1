package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(switchCmd)
}

var switchCmd = &cobra.Command{
	Use:   "switch [id]",
	Short: "Switch to the specified provider",
	Long: `Make the given provider current and write its settings to the app's live files.

Edits made directly to the live files since the last switch are first saved
back into the previously current provider.

Examples:
  cc-switch switch relay
  cc-switch --app codex switch duckcoding`,
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
		if err := m.Switch(app, p.ID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Switched %s to provider: %s", app, p.Name)))
		return nil
	},
}
