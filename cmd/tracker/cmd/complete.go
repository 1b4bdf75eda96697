package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/statemachine"
	"github.com/avery-ling/task-tracker/internal/vcs"
)

var completeDBOnly bool

var completeCmd = &cobra.Command{
	Use:   "complete [id...]",
	Short: "Merge a plan's branch into main and mark it completed",
	Long: `Merges main into the plan's branch to pick up any drift, then merges
the branch back into main so conflicts resolve on the feature branch
rather than on main. With --db-only, skips both merges and only
updates the status record. With no ids, completes every plan currently
in-review.`,
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().BoolVar(&completeDBOnly, "db-only", false, "skip the git merge, only flip the status record")
}

func runComplete(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	ctx := cmd.Context()

	ids, err := resolveCompleteIDs(ctx, d, args)
	if err != nil {
		printErr(err)
		return err
	}

	for _, id := range ids {
		if err := completeOne(ctx, d, id); err != nil {
			printErr(err)
			continue
		}
		printInfo("plan %d: completed", id)
	}
	return nil
}

func resolveCompleteIDs(ctx context.Context, d *deps, args []string) ([]int64, error) {
	if len(args) > 0 {
		ids := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := parseID(a)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	plans, err := d.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, p := range plans {
		if p.Status == core.StatusInReview {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func completeOne(ctx context.Context, d *deps, id int64) error {
	plan, err := d.Store.Get(ctx, id)
	if err != nil {
		return err
	}

	var predecessor *core.Plan
	if plan.HasDependency() {
		predecessor, err = d.Store.GetDependency(ctx, id)
		if err != nil {
			return err
		}
	}
	if guard := statemachine.CanComplete(plan, predecessor); !guard.Allowed {
		return fmt.Errorf("plan %d: %s", id, guard.Reason)
	}

	if !completeDBOnly {
		if err := mergePlanBranch(ctx, plan); err != nil {
			return err
		}
	}

	return d.Store.UpdateStatus(ctx, id, core.StatusCompleted)
}

// mergePlanBranch syncs the plan's branch with main, then merges the
// branch back into main, so any conflict resolves on the feature branch
// rather than on main itself.
func mergePlanBranch(ctx context.Context, plan *core.Plan) error {
	if plan.Branch == "" {
		return nil
	}

	workDir := plan.WorktreePath
	if workDir == "" {
		workDir = plan.ProjectPath
	}
	workRepo, err := vcs.NewRepo(workDir)
	if err != nil {
		return core.ErrIO("open worktree repository", err)
	}
	if res := workRepo.Merge(ctx, "main"); !res.OK {
		return core.ErrVCS("merge main into "+plan.Branch, res.Stderr)
	}

	mainRepo, err := vcs.NewRepo(plan.ProjectPath)
	if err != nil {
		return core.ErrIO("open project repository", err)
	}
	if res := mainRepo.Checkout(ctx, "main"); !res.OK {
		return core.ErrVCS("checkout main", res.Stderr)
	}
	if res := mainRepo.Merge(ctx, plan.Branch); !res.OK {
		return core.ErrVCS("merge "+plan.Branch+" into main", res.Stderr)
	}
	return nil
}
