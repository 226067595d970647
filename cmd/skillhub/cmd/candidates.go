package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/core"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <source>",
	Short: "List the skills a source contains without installing",
	Long: `Discover skill folders in a git repository or, with --local, a folder on
disk. Invalid folders are listed with the reason they cannot be installed.

Sources: owner/repo, owner/repo/tree/<branch>/<path>, host/owner/repo,
https://host/owner/repo(.git), git@host:owner/repo.git, or a local path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		local, _ := cmd.Flags().GetBool("local")

		var candidates []core.SkillCandidate
		if local {
			candidates, err = d.manager.ListLocalCandidates(ctx, args[0])
		} else {
			candidates, err = d.manager.ListGitCandidates(ctx, args[0])
		}
		if err != nil {
			reportError(err)
			return err
		}

		printCandidates(candidates)
		fmt.Fprintf(os.Stdout, "\n%d installable, %d total\n", len(core.ValidCandidates(candidates)), len(candidates))
		return nil
	},
}

func init() {
	candidatesCmd.Flags().Bool("local", false, "Treat the source as a local folder")
	rootCmd.AddCommand(candidatesCmd)
}
