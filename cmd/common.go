package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(commonCmd)
	commonCmd.AddCommand(commonGetCmd)
	commonCmd.AddCommand(commonSetCmd)
	commonSetCmd.Flags().StringP("file", "f", "", "Read the snippet from a file (- for stdin)")
}

var commonCmd = &cobra.Command{
	Use:   "common",
	Short: "Manage the common config snippet",
	Long: `The common config snippet holds settings shared by every provider of an app.
It is merged into the live files on every switch and stripped out again when
live edits are saved back into a provider.

Claude and Gemini snippets are JSON objects, Codex snippets are TOML.`,
}

var commonGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the common config snippet",
	Long:  "Print the selected app's common config snippet",
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
		text, err := m.CommonConfigSnippet(app)
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(fmt.Sprintf("No common config snippet for %s", app)))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var commonSetCmd = &cobra.Command{
	Use:   "set [snippet]",
	Short: "Replace the common config snippet",
	Long: `Replace the selected app's common config snippet. An empty snippet clears it.
The current provider's live files are rewritten with the new snippet.

Examples:
  cc-switch common set '{"includeCoAuthoredBy":false}'
  cc-switch --app codex common set --file common.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		var text string
		switch {
		case file != "" && len(args) == 1:
			return fmt.Errorf("pass the snippet either as an argument or with --file, not both")
		case file == "-":
			text, err = readText(cmd, "-")
		case file != "":
			text, err = readText(cmd, "@"+file)
		case len(args) == 1:
			text = args[0]
		}
		if err != nil {
			return err
		}

		m, err := openManager()
		if err != nil {
			return err
		}
		if err := m.SetCommonConfigSnippet(app, text); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Updated %s common config snippet", app)))
		return nil
	},
}
