package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(endpointCmd)
	endpointCmd.AddCommand(endpointListCmd)
	endpointCmd.AddCommand(endpointAddCmd)
	endpointCmd.AddCommand(endpointRemoveCmd)
}

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage a provider's custom endpoints",
	Long:  "Custom endpoints are alternative API URLs remembered per provider, e.g. for speed testing mirrors",
}

var endpointListCmd = &cobra.Command{
	Use:   "list [id]",
	Short: "List custom endpoints, newest first",
	Long:  "List the custom endpoints stored for a provider, most recently added first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		endpoints, err := m.CustomEndpoints(app, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(endpoints) == 0 {
			fmt.Fprintf(out, "No custom endpoints for %s\n", args[0])
			return nil
		}
		for _, ep := range endpoints {
			added := time.UnixMilli(ep.AddedAt).Format(time.DateTime)
			fmt.Fprintf(out, "  %s %s\n", ep.URL, dimStyle.Render("(added "+added+")"))
		}
		return nil
	},
}

var endpointAddCmd = &cobra.Command{
	Use:   "add [id] [url]",
	Short: "Add a custom endpoint",
	Long:  "Remember an http(s) URL as a custom endpoint of a provider; a trailing slash is dropped",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		if err := m.AddCustomEndpoint(app, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Added endpoint to %s", args[0])))
		return nil
	},
}

var endpointRemoveCmd = &cobra.Command{
	Use:     "remove [id] [url]",
	Aliases: []string{"rm"},
	Short:   "Remove a custom endpoint",
	Long:    "Forget a custom endpoint of a provider",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		if err := m.RemoveCustomEndpoint(app, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Endpoint removed from %s\n", args[0])
		return nil
	},
}
