package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/worktree"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned worktrees with no matching plan record",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	ctx := cmd.Context()

	plans, err := d.Store.List(ctx)
	if err != nil {
		printErr(err)
		return err
	}

	liveIDs := make(map[string]bool, len(plans))
	for _, p := range plans {
		key := fmt.Sprintf("%s/%d", worktree.ProjectSlug(p.ProjectPath), p.ID)
		liveIDs[key] = true
	}

	orphans, err := d.Worktrees.ScanOrphans(liveIDs)
	if err != nil {
		printErr(err)
		return err
	}

	// OrphanEntry carries only (project slug, plan id, path) — not the
	// original project path — so there is no way to open a *vcs.Repo
	// scoped to the project to run a proper worktree remove/prune; the
	// directory is deleted directly instead.
	for _, o := range orphans {
		if err := os.RemoveAll(o.Path); err != nil {
			printErr(fmt.Errorf("removing orphaned worktree %s: %w", o.Path, err))
			continue
		}
		printInfo("removed orphaned worktree %s", o.Path)
	}

	if len(orphans) == 0 {
		printInfo("no orphaned worktrees found")
	}
	return nil
}
