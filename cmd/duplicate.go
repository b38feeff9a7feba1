package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(duplicateCmd)
}

var duplicateCmd = &cobra.Command{
	Use:     "duplicate [id]",
	Aliases: []string{"copy"},
	Short:   "Duplicate a provider",
	Long:    "Store a copy of the given provider under a new id",
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
		dup, err := m.Duplicate(app, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Duplicated %s as %s (%s)", args[0], dup.Name, dup.ID)))
		return nil
	},
}
