package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barysiuk/skillhub/internal/logger"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "skillhub",
	Short: "Keep one copy of every agent skill and share it with all your tools",
	Long: `skillhub installs agent skills from local folders or git repositories into
a single central repository, and links or copies them into the skills
directories of the coding tools you use.

Skills are directories with a SKILL.md manifest. Tools that read the same
skills directory are synced together.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("skillhub %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config, warn)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: fmt or json (default from config, fmt)")
	rootCmd.AddCommand(versionCmd)
}

// configureLogging applies --log-level/--log-format, falling back to the
// config file. A broken config file is reported by the command itself.
func configureLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	if level == "" || format == "" {
		if cm, err := newConfigManager(); err == nil {
			if cfg, err := cm.Load(); err == nil {
				if level == "" {
					level = cfg.LogLevel
				}
				if format == "" {
					format = cfg.LogFormat
				}
			}
		}
	}

	if level != "" {
		if err := logger.SetLogLevel(level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	if format != "" {
		logger.SetLogFormat(format)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
