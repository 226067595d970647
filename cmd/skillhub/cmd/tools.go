package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/core/system"
	"github.com/barysiuk/skillhub/internal/tui"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools skillhub can sync skills into",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}

		if shared, _ := cmd.Flags().GetBool("shared"); shared {
			groups := system.SharedGroups()
			dirs := make([]string, 0, len(groups))
			for dir := range groups {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			for _, dir := range dirs {
				fmt.Fprintf(os.Stdout, "%s  %s\n", tui.HeaderStyle.Render("~/"+dir), strings.Join(system.Keys(groups[dir]), ", "))
			}
			return nil
		}

		list := system.All()
		if installed, _ := cmd.Flags().GetBool("installed"); installed {
			list = system.Detect(home)
			if len(list) == 0 {
				fmt.Fprintln(os.Stdout, "No supported tools detected.")
				return nil
			}
		}

		for _, a := range list {
			marker := "  "
			if system.IsInstalled(a, home) {
				marker = tui.OKStyle.Render("✓ ")
			}
			fmt.Fprintf(os.Stdout, "%s%-16s %-18s %s\n", marker, a.Key, a.DisplayName, tui.MutedStyle.Render("~/"+a.RelativeSkillsDir))
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().Bool("installed", false, "Only list tools detected on this machine")
	toolsCmd.Flags().Bool("shared", false, "List tools that read the same skills directory")
	rootCmd.AddCommand(toolsCmd)
}
