package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/internal/live"
)

func init() {
	rootCmd.AddCommand(currentCmd)
}

var currentCmd = &cobra.Command{
	Use:     "current",
	Aliases: []string{"status"},
	Short:   "Show the current provider",
	Long:    "Show the provider whose settings are live for the selected app",
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
		id, err := m.Current(app)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if id == "" {
			fmt.Fprintf(out, "No current %s provider\n", app)
			fmt.Fprintln(out, dimStyle.Render("Run 'cc-switch import' to capture the existing configuration"))
			return nil
		}
		p, err := m.Get(app, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Current %s provider:\n", app)
		fmt.Fprintf(out, "  ID: %s\n", p.ID)
		fmt.Fprintf(out, "  Name: %s\n", p.Name)
		if apiURL := live.APIEndpoint(app, p); apiURL != "" {
			fmt.Fprintf(out, "  API URL: %s\n", apiURL)
		}
		if p.WebsiteURL != "" {
			fmt.Fprintf(out, "  Website: %s\n", p.WebsiteURL)
		}
		return nil
	},
}
