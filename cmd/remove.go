package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"delete", "rm"},
	Short:   "Remove a provider",
	Long:    "Remove the provider with the given id. The current provider cannot be removed; switch away from it first.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		if err := m.Delete(app, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Provider removed: %s\n", args[0])
		return nil
	},
}
