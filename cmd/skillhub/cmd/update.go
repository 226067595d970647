package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <skill-id>...",
	Short: "Re-install skills from the source they were installed from",
	Long: `Fetch each skill again from its recorded source, replace the central copy
and refresh every copy-mode target. Symlinked targets see the new content
without being touched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		var failed int
		for _, id := range args {
			result, err := d.manager.UpdateFromSource(ctx, id)
			if err != nil {
				reportError(err)
				fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", id, err)
				failed++
				continue
			}

			fmt.Fprintf(os.Stdout, "Updated: %s\n", result.SkillID)
			if len(result.UpdatedTargets) > 0 {
				fmt.Fprintf(os.Stdout, "  Resynced: %s\n", strings.Join(result.UpdatedTargets, ", "))
			}
			if len(result.FailedTargets) > 0 {
				fmt.Fprintf(os.Stderr, "  Resync failed: %s\n", strings.Join(result.FailedTargets, ", "))
				if result.Err != nil {
					fmt.Fprintf(os.Stderr, "  %v\n", result.Err)
				}
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d skill(s) not fully updated", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
