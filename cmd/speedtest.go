package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ccswitch/internal/apperr"
	"ccswitch/internal/log"
	"ccswitch/internal/speedtest"
)

func init() {
	rootCmd.AddCommand(speedtestCmd)
	speedtestCmd.Flags().BoolP("json", "j", false, "JSON format output")
	speedtestCmd.Flags().DurationP("timeout", "t", speedtest.DefaultTimeout, "Request timeout (2s to 30s)")
}

var speedtestCmd = &cobra.Command{
	Use:   "speedtest [id]",
	Short: "Test provider endpoint latency",
	Long: `Measure the latency of a provider's API URL and of its custom endpoints.
The current provider is tested when no id is given.

Examples:
  cc-switch speedtest
  cc-switch speedtest relay --timeout 5s
  cc-switch --app codex speedtest duckcoding -j`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		id := ""
		if len(args) == 1 {
			id = args[0]
		} else if id, err = m.Current(app); err != nil {
			return err
		}
		if id == "" {
			return apperr.NotFound("cli.speedtest.no_provider",
				fmt.Sprintf("%s 没有当前供应商", app),
				fmt.Sprintf("no current %s provider", app))
		}
		p, err := m.Get(app, id)
		if err != nil {
			return err
		}
		urls, err := m.EndpointURLs(app, p.ID)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return apperr.Validation("cli.speedtest.no_endpoint",
				fmt.Sprintf("供应商 %s 没有可测试的 API 地址", id),
				fmt.Sprintf("provider %s has no API URL to test (it uses the app's default endpoint)", id))
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		tester := speedtest.NewTester(speedtest.ClampTimeout(timeout))
		results := tester.Test(context.Background(), urls)

		for _, r := range results {
			if r.Error == "" {
				if err := m.TouchCustomEndpoint(app, id, r.URL); err != nil {
					log.Warn("failed to record use of %s: %v", r.URL, err)
				}
			}
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to serialize results: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		fmt.Fprintf(out, "Testing %s provider: %s\n", app, p.Name)
		for _, r := range results {
			switch {
			case r.Error != "":
				fmt.Fprintln(out, failStyle.Render(fmt.Sprintf("  ✗ %s: %s", r.URL, r.Error)))
			case r.OK():
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("  ✓ %s: %s (%d)", r.URL, time.Duration(*r.LatencyMs)*time.Millisecond, r.StatusCode)))
			default:
				fmt.Fprintf(out, "  ~ %s: %s (status %d)\n", r.URL, time.Duration(*r.LatencyMs)*time.Millisecond, r.StatusCode)
			}
		}
		return nil
	},
}
