package cmd

import (
	"github.com/spf13/cobra"

	"ccswitch/internal/tui"
)

func init() {
	rootCmd.AddCommand(pickCmd)
}

var pickCmd = &cobra.Command{
	Use:     "pick",
	Aliases: []string{"ui"},
	Short:   "Browse and switch providers interactively",
	Long:    "Open a terminal UI listing the providers of every app. Tab changes app, Enter shows details, s switches, ? lists all keys.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		return tui.Run(m, app, language())
	},
}
