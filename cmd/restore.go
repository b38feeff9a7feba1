package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/config"
)

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the provider store from its latest backup",
	Long: `Replace config.json with the newest backup taken before the last save.
Live files are left alone; run switch afterwards to rewrite them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultStorePath()
		if err != nil {
			return err
		}
		store, err := config.OpenStore(path)
		if err != nil {
			return err
		}
		backup, err := store.RestoreLatestBackup()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Restored %s", path)))
		fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("  from "+backup))
		return nil
	},
}
