package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ccswitch/config"
	"ccswitch/internal/live"
	"ccswitch/internal/utils"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("json", "j", false, "JSON format output (credentials masked)")
}

// providerView is the JSON shape printed by list
type providerView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Current        bool   `json:"current"`
	APIURL         string `json:"apiUrl,omitempty"`
	Category       string `json:"category,omitempty"`
	WebsiteURL     string `json:"websiteUrl,omitempty"`
	SortIndex      *int   `json:"sortIndex,omitempty"`
	SettingsConfig any    `json:"settingsConfig"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all providers of an app",
	Long:  "List the providers stored for the selected app in display order; * marks the current one",
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
		providers, err := m.List(app)
		if err != nil {
			return err
		}
		current, err := m.Current(app)
		if err != nil {
			return err
		}
		config.SortProviders(providers)

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			views := make([]providerView, 0, len(providers))
			for _, p := range providers {
				views = append(views, providerView{
					ID:             p.ID,
					Name:           p.Name,
					Current:        p.ID == current,
					APIURL:         live.APIEndpoint(app, p),
					Category:       p.Category,
					WebsiteURL:     p.WebsiteURL,
					SortIndex:      p.SortIndex,
					SettingsConfig: utils.MaskSecrets(p.SettingsConfig),
				})
			}
			data, err := json.MarshalIndent(views, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize providers: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(providers) == 0 {
			fmt.Fprintf(out, "No %s providers configured\n", app)
			return nil
		}

		fmt.Fprintf(out, "%s providers:\n", app)
		for _, p := range providers {
			apiURL := live.APIEndpoint(app, p)
			if apiURL == "" {
				apiURL = "(default)"
			}
			line := fmt.Sprintf("  %s: %s (URL: %s)", p.ID, p.Name, apiURL)
			if p.ID == current {
				fmt.Fprintln(out, currentStyle.Render("* "+line[2:]))
				continue
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "\n%s\n", dimStyle.Render("* indicates the current provider"))
		return nil
	},
}
