package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set the central repository root",
	Long: `Set the directory that holds the single canonical copy of every installed
skill. Defaults to ~/.skillhub/skills. The directory is created if needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		dir, _ := cmd.Flags().GetString("central")
		if dir == "" {
			dir = d.config.DefaultCentralDir()
		}

		root, err := d.manager.SetCentralRoot(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Central repository: %s\n", root)
		return nil
	},
}

func init() {
	initCmd.Flags().String("central", "", "Central repository directory (default: ~/.skillhub/skills)")
	rootCmd.AddCommand(initCmd)
}
