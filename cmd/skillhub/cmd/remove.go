package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/tui"
)

var removeCmd = &cobra.Command{
	Use:     "remove <skill-id>",
	Aliases: []string{"uninstall"},
	Short:   "Remove an installed skill and its targets",
	Long: `Remove a skill's targets, its central copy and its records.

Only targets skillhub created are deleted: copies it made, and links that
still point at the central copy. Anything else found at a recorded path is
reported and left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			ok, err := tui.Confirm(fmt.Sprintf("Remove skill %s and all its targets?", args[0]), nil, nil)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stdout, "Cancelled.")
				return nil
			}
		}

		result, err := d.manager.Uninstall(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Removed: %s\n", result.SkillID)
		if len(result.RemovedTargets) > 0 {
			fmt.Fprintf(os.Stdout, "  Cleaned up targets: %s\n", strings.Join(result.RemovedTargets, ", "))
		}
		for _, p := range result.SkippedTargets {
			fmt.Fprintf(os.Stderr, "  Left in place (not created by skillhub): %s\n", p)
		}
		return nil
	},
}

func init() {
	removeCmd.Flags().BoolP("interactive", "i", false, "Ask for confirmation first")
	rootCmd.AddCommand(removeCmd)
}
