package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change settings in config.json",
	Long: `Read and change settings in ~/.skillhub/config.json.

Keys: databasePath, logLevel, logFormat, cloneTimeout, defaultMode,
discoveryIgnore (comma-separated globs), cloneURLOverrides.<host/owner/repo>.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := newConfigManager()
		if err != nil {
			return err
		}
		v, err := cm.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a config value (omit the value to reset it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := newConfigManager()
		if err != nil {
			return err
		}
		var value string
		if len(args) == 2 {
			value = args[1]
		}
		if err := cm.Set(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Updated %s\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := newConfigManager()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, cm.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
