package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"ccswitch/internal/apperr"
	"ccswitch/internal/utils"
)

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.Flags().StringP("path", "p", "", "gjson path to print, e.g. env.ANTHROPIC_BASE_URL")
	liveCmd.Flags().Bool("show-secrets", false, "Print credentials unmasked")
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Show the app's live configuration",
	Long: `Print the selected app's live configuration files in settings_config shape.
Credentials are masked unless --show-secrets is given.

Examples:
  cc-switch live
  cc-switch live --path env.ANTHROPIC_BASE_URL
  cc-switch --app codex live --path config`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		settings, err := m.ReadLiveSettings(app)
		if err != nil {
			return err
		}
		var value any = settings
		if show, _ := cmd.Flags().GetBool("show-secrets"); !show {
			value = utils.MaskSecrets(settings)
		}
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize live settings: %w", err)
		}

		out := cmd.OutOrStdout()
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			fmt.Fprintln(out, string(data))
			return nil
		}
		result := gjson.GetBytes(data, path)
		if !result.Exists() {
			return apperr.NotFound("cli.live.path_not_found",
				fmt.Sprintf("实时配置中不存在路径: %s", path),
				fmt.Sprintf("path not found in live settings: %s", path))
		}
		if result.Type == gjson.String {
			fmt.Fprintln(out, result.Str)
			return nil
		}
		fmt.Fprintln(out, result.Raw)
		return nil
	},
}
