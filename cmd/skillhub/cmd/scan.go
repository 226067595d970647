package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/core"
	"github.com/barysiuk/skillhub/internal/core/system"
	"github.com/barysiuk/skillhub/internal/tui"
)

var scanCmd = &cobra.Command{
	Use:   "scan <tool>",
	Short: "List the skills already present in a tool's skills directory",
	Long: `List the entries of a tool's skills directory, including links, so skills
you added by hand can be found. Entries owned by skillhub itself (the
central repository and links into it) are not reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, ok := system.ByKey(args[0])
		if !ok {
			return fmt.Errorf("unknown tool %q (see skillhub tools)", args[0])
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("getting home directory: %w", err)
			}
			dir = system.SkillsPath(a, home)
		}

		var opts system.ScanOptions
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()
		root, err := d.manager.CentralRoot(ctx)
		switch {
		case err == nil:
			opts.PrivateRoots = []string{root}
		case !errors.Is(err, core.ErrCentralRepoNotConfigured):
			return err
		}

		found, err := system.ScanToolDir(a, dir, opts)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Fprintf(os.Stdout, "No skills in %s\n", dir)
			return nil
		}
		for _, s := range found {
			line := fmt.Sprintf("%-24s %s", s.Name, tui.MutedStyle.Render(s.Path))
			if s.IsLink {
				line += tui.BadgeStyle.Render(" -> " + s.LinkTarget)
			}
			fmt.Fprintln(os.Stdout, line)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringP("dir", "d", "", "Directory to scan (default: the tool's skills directory)")
	rootCmd.AddCommand(scanCmd)
}
