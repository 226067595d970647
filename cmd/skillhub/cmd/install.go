package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/core"
	"github.com/barysiuk/skillhub/internal/tui"
)

var installCmd = &cobra.Command{
	Use:   "install <source>",
	Short: "Install a skill into the central repository",
	Long: `Install a skill from a git repository or, with --local, a folder on disk.

When the source holds several skills, choose one with --subpath or pick it
interactively with --pick. A SKILL.md at the source root always wins.

Use --sync to link (or copy, with --mode copy) the new skill into tools
right away, e.g. --sync cursor,claude_code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		source := args[0]
		local, _ := cmd.Flags().GetBool("local")
		subpath, _ := cmd.Flags().GetString("subpath")
		name, _ := cmd.Flags().GetString("name")
		pick, _ := cmd.Flags().GetBool("pick")
		syncTools := splitList(mustGetString(cmd, "sync"))
		mode, _ := cmd.Flags().GetString("mode")
		if mode == "" {
			mode = d.cfg.Mode()
		}

		if pick && subpath == "" {
			subpath, err = pickSubpath(ctx, d, source, local)
			if err != nil {
				return err
			}
		}

		result, err := install(ctx, d, source, local, subpath, name)
		if err != nil && pick && !local {
			// Interactive runs may fix the clone URL and retry once.
			if ce, ok := core.IsCloneError(err); ok {
				if retryErr := retryWithNewURL(ctx, d, source, ce); retryErr == nil {
					result, err = install(ctx, d, source, local, subpath, name)
				}
			}
		}
		if err != nil {
			reportError(err)
			return err
		}

		fmt.Fprintf(os.Stdout, "Installed: %s\n", result.Name)
		fmt.Fprintf(os.Stdout, "  ID:   %s\n", result.SkillID)
		fmt.Fprintf(os.Stdout, "  Path: %s\n", result.CentralPath)

		var failed int
		for _, tool := range syncTools {
			res, err := d.manager.SyncTarget(ctx, result.SkillID, tool, core.SyncOptions{Mode: mode})
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "  sync %s: %v\n", tool, err)
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

func install(ctx context.Context, d *deps, source string, local bool, subpath, name string) (*core.InstallResult, error) {
	switch {
	case local && subpath != "":
		return d.manager.InstallLocalFromSelection(ctx, source, subpath, name)
	case local:
		return d.manager.InstallLocal(ctx, source, name)
	case subpath != "":
		return d.manager.InstallGitFromSelection(ctx, source, subpath, name)
	default:
		return d.manager.InstallGit(ctx, source, name)
	}
}

// pickSubpath lists the source's candidates and lets the user choose one.
func pickSubpath(ctx context.Context, d *deps, source string, local bool) (string, error) {
	var (
		candidates []core.SkillCandidate
		err        error
	)
	if local {
		candidates, err = d.manager.ListLocalCandidates(ctx, source)
	} else {
		candidates, err = d.manager.ListGitCandidates(ctx, source)
		if ce, ok := core.IsCloneError(err); ok {
			if retryErr := retryWithNewURL(ctx, d, source, ce); retryErr == nil {
				candidates, err = d.manager.ListGitCandidates(ctx, source)
			}
		}
	}
	if err != nil {
		reportError(err)
		return "", err
	}

	sub, err := tui.Pick(candidates, tui.PickerOptions{Title: "SELECT SKILL"})
	if errors.Is(err, tui.ErrCancelled) {
		return "", errors.New("no skill selected")
	}
	return sub, err
}

// retryWithNewURL asks for a replacement clone URL, saves it as an override
// for the source's repository and reloads the manager.
func retryWithNewURL(ctx context.Context, d *deps, source string, ce *core.CloneError) error {
	key := core.ParseSource(source).RepoKey()
	if key == "" {
		return errors.New("source is not a remote repository")
	}
	url, err := tui.PromptCloneURL(ce, nil, os.Stderr)
	if err != nil {
		return err
	}
	if err := d.config.SaveCloneURLOverride(key, url); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved clone URL override for %s\n", key)
	return d.reload(ctx)
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	installCmd.Flags().Bool("local", false, "Treat the source as a local folder")
	installCmd.Flags().String("subpath", "", "Install the skill at this path inside the source")
	installCmd.Flags().String("name", "", "Display name (also determines the skill ID)")
	installCmd.Flags().Bool("pick", false, "Choose the skill interactively")
	installCmd.Flags().String("sync", "", "Comma-separated tools to sync after installing (e.g. cursor,claude_code)")
	installCmd.Flags().String("mode", "", "Sync mode for --sync: symlink or copy (default from config)")
	rootCmd.AddCommand(installCmd)
}
