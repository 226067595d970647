package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/store"
	"github.com/barysiuk/skillhub/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills and where they are synced",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		skills, err := d.manager.List(ctx)
		if err != nil {
			return err
		}
		if len(skills) == 0 {
			fmt.Fprintln(os.Stdout, "No skills installed.")
			return nil
		}

		for _, sk := range skills {
			source := sk.SourceRef
			if sk.SourceSubpath != "" {
				source += " " + sk.SourceSubpath
			}
			if sk.SourceBranch != "" {
				source += " @" + sk.SourceBranch
			}
			fmt.Fprintf(os.Stdout, "%s %s\n", tui.NameStyle.Render(sk.ID), tui.MutedStyle.Render("("+sk.SourceType+": "+source+")"))
			if sk.Description != "" {
				fmt.Fprintf(os.Stdout, "  %s\n", sk.Description)
			}
			for _, t := range sk.Targets {
				status := tui.OKStyle.Render(t.Status)
				if t.Status != store.StatusOK {
					status = tui.ErrorStyle.Render(t.Status)
				}
				fmt.Fprintf(os.Stdout, "  %-14s %-8s %s %s\n", t.Tool, t.Mode, status, tui.MutedStyle.Render(t.TargetPath))
				if t.LastError != nil {
					fmt.Fprintf(os.Stdout, "  %14s %s\n", "", tui.ErrorStyle.Render(*t.LastError))
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
