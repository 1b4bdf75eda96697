package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/vcs"
)

var resetConfirmBranchDelete bool

var resetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Return a plan to open, from any other status",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetConfirmBranchDelete, "confirm-branch-delete", false,
		"also delete the plan's branch (required when resetting from completed)")
}

func runReset(cmd *cobra.Command, args []string) error {
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

	if plan.Status == core.StatusCompleted && !resetConfirmBranchDelete {
		err := fmt.Errorf("resetting a completed plan requires --confirm-branch-delete")
		printErr(err)
		return err
	}

	if plan.Status == core.StatusCompleted && plan.Branch != "" {
		if repo, err := vcs.NewRepo(plan.ProjectPath); err == nil {
			_ = repo.BranchDelete(ctx, plan.Branch)
		}
	}

	if err := d.Store.UpdateStatus(ctx, id, core.StatusOpen); err != nil {
		printErr(err)
		return err
	}

	printInfo("plan %d: reset to open", id)
	return nil
}
