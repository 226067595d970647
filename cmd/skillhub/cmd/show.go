package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/core"
	"github.com/barysiuk/skillhub/internal/tui"
)

var showCmd = &cobra.Command{
	Use:   "show <skill-id>",
	Short: "Show an installed skill's SKILL.md",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		sk, err := d.manager.Get(ctx, args[0])
		if err != nil {
			return err
		}

		skillMd := filepath.Join(sk.CentralPath, "SKILL.md")
		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			data, err := os.ReadFile(skillMd)
			if err != nil {
				return fmt.Errorf("reading %s: %w", skillMd, err)
			}
			_, err = os.Stdout.Write(data)
			return err
		}

		meta, err := core.ParseSkillMd(skillMd)
		if err != nil {
			return err
		}

		if pager, _ := cmd.Flags().GetBool("pager"); pager {
			return tui.Page(meta.Name, meta.Body)
		}

		fmt.Fprintln(os.Stdout, tui.NameStyle.Render(meta.Name))
		if meta.Description != "" {
			fmt.Fprintln(os.Stdout, tui.MutedStyle.Render(meta.Description))
		}
		width, _ := cmd.Flags().GetInt("width")
		fmt.Fprintln(os.Stdout, tui.RenderMarkdown(meta.Body, width))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "Print SKILL.md without rendering")
	showCmd.Flags().Bool("pager", false, "Open the rendered skill in a scrollable view")
	showCmd.Flags().Int("width", 80, "Word-wrap width for rendered output")
	rootCmd.AddCommand(showCmd)
}
