package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/core"
)

var syncCmd = &cobra.Command{
	Use:   "sync <skill-id> <tool>...",
	Short: "Link or copy an installed skill into tool skills directories",
	Long: `Materialize the central copy of a skill for one or more tools.

By default the skill is linked into the tool's skills directory. Use
--mode copy to copy it instead, and --path to target a custom directory
(required for tools skillhub does not know). Tools that read the same
directory are recorded together.

An existing entry that skillhub did not create is left alone unless
--force is given.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		opts := core.SyncOptions{
			Mode:       mustGetString(cmd, "mode"),
			TargetPath: mustGetString(cmd, "path"),
		}
		opts.Force, _ = cmd.Flags().GetBool("force")
		if opts.Mode == "" {
			opts.Mode = d.cfg.Mode()
		}
		if opts.TargetPath != "" && len(args) > 2 {
			return fmt.Errorf("--path can only be used with a single tool")
		}

		var failed int
		for _, tool := range args[1:] {
			res, err := d.manager.SyncTarget(ctx, args[0], tool, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", tool, err)
				failed++
				continue
			}
			printSyncResult(res)
		}
		if failed > 0 {
			return fmt.Errorf("%d tool(s) failed to sync", failed)
		}
		return nil
	},
}

func printSyncResult(res *core.SyncResult) {
	fmt.Fprintf(os.Stdout, "Synced: %s -> %s (%s)\n", strings.Join(res.Group, ", "), res.TargetPath, res.Mode)
}

func init() {
	syncCmd.Flags().String("path", "", "Target directory (default: the tool's skills directory)")
	syncCmd.Flags().String("mode", "", "Sync mode: symlink or copy (default from config)")
	syncCmd.Flags().Bool("force", false, "Replace an existing entry not created by skillhub")
	rootCmd.AddCommand(syncCmd)
}
