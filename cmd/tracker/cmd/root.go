package cmd

import (
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	agentBinary string
	logLevel    string
	logFormat   string
	noColor     bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Multi-project agent orchestrator for implementation plans",
	Long: `tracker registers implementation plans and drives an external coding
agent through a bounded worker/reviewer loop on an isolated branch per
plan, scheduling work serially within a project and in parallel across
projects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory for the plans database, config, and logs (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&agentBinary, "agent-binary", "",
		"path to the external coding-agent binary (default: \"claude\" on PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")
}
