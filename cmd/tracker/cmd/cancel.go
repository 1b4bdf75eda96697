package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/vcs"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Delete a plan's record and branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printErr(err)
		return err
	}

	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	ctx := cmd.Context()

	plan, err := d.Store.Get(ctx, id)
	if err != nil {
		printErr(err)
		return err
	}

	dependents, err := d.Store.GetDependents(ctx, id)
	if err != nil {
		printErr(err)
		return err
	}
	if guard := core.CanDelete(dependents); !guard.Allowed {
		err := fmt.Errorf("plan %d: %s (plan %d)", id, guard.Reason, guard.BlockedBy.ID)
		printErr(err)
		return err
	}

	if plan.WorktreePath != "" {
		repo, err := vcs.NewRepo(plan.ProjectPath)
		if err == nil {
			_ = repo.WorktreeRemove(ctx, plan.WorktreePath)
		}
	}
	if plan.Branch != "" {
		if repo, err := vcs.NewRepo(plan.ProjectPath); err == nil {
			_ = repo.BranchDelete(ctx, plan.Branch)
		}
	}

	if err := d.Store.Delete(ctx, id); err != nil {
		printErr(err)
		return err
	}

	printInfo("cancelled plan %d", id)
	return nil
}
