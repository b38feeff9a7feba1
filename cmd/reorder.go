package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ccswitch/config"
	"ccswitch/internal/apperr"
)

func init() {
	rootCmd.AddCommand(reorderCmd)
}

// parseSortUpdates parses id=index arguments
func parseSortUpdates(args []string) ([]config.SortUpdate, error) {
	updates := make([]config.SortUpdate, 0, len(args))
	for _, arg := range args {
		id, rawIdx, ok := strings.Cut(arg, "=")
		idx, err := strconv.Atoi(strings.TrimSpace(rawIdx))
		if !ok || strings.TrimSpace(id) == "" || err != nil {
			return nil, apperr.Validation("cli.reorder.invalid_arg",
				fmt.Sprintf("参数格式应为 id=序号: %q", arg),
				fmt.Sprintf("expected id=index, got %q", arg))
		}
		updates = append(updates, config.SortUpdate{ID: strings.TrimSpace(id), SortIndex: idx})
	}
	return updates, nil
}

var reorderCmd = &cobra.Command{
	Use:   "reorder id=index...",
	Short: "Set provider sort order",
	Long: `Assign sort indexes to providers; lower indexes are listed first.
Unknown ids are ignored.

Example:
  cc-switch reorder relay=0 official=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := selectedApp()
		if err != nil {
			return err
		}
		updates, err := parseSortUpdates(args)
		if err != nil {
			return err
		}
		m, err := openManager()
		if err != nil {
			return err
		}
		if err := m.UpdateSortOrder(app, updates); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Updated sort order of %d %s provider(s)", len(updates), app)))
		return nil
	},
}
