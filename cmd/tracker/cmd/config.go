package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/config"
)

var configKeys = []string{
	"skipPermissions",
	"maxReviewRounds",
	"usageLimits.enabled",
	"usageLimits.minAvailableInputTokens",
	"usageLimits.minAvailableRequests",
	"usageLimits.maxCostPerSession",
	"usageLimits.maxWaitMinutes",
	"usageLimits.organizationTier",
	"worktree.enabled",
	"worktree.copyGitignored",
	"worktree.autoCleanupOnComplete",
}

var configCmd = &cobra.Command{
	Use:   "config [key [value]]",
	Short: "Get or set a preference, or list all of them",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	dir := dataDir
	if dir == "" {
		d, err := config.DataDir()
		if err != nil {
			printErr(err)
			return err
		}
		dir = d
	}
	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.Load(cfgPath)

	switch len(args) {
	case 0:
		keys := append([]string(nil), configKeys...)
		sort.Strings(keys)
		for _, k := range keys {
			v, _ := cfg.Get(k)
			fmt.Printf("%s = %v\n", k, v)
		}
		return nil

	case 1:
		v, ok := cfg.Get(args[0])
		if !ok {
			err := fmt.Errorf("unknown config key: %s", args[0])
			printErr(err)
			return err
		}
		fmt.Printf("%v\n", v)
		return nil

	default:
		if err := cfg.Set(args[0], args[1]); err != nil {
			printErr(err)
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			printErr(err)
			return err
		}
		printInfo("%s = %s", args[0], args[1])
		return nil
	}
}
