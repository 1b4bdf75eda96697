package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/scheduler"
)

var workCmd = &cobra.Command{
	Use:   "work [id...]",
	Short: "Run the worker/reviewer loop for one or more plans",
	Long: `With one id, runs that plan's review loop directly. With several ids
or none at all, fans the work out across projects via the scheduler:
plans in the same project run serially in submission order, while
distinct projects run concurrently. With no ids, every unblocked open
plan is scheduled.`,
	RunE: runWork,
}

func init() {
	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	ctx := cmd.Context()

	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			printErr(err)
			return err
		}
		outcome, err := d.Orch.RunPlan(ctx, id)
		if err != nil {
			printErr(err)
			return err
		}
		printInfo("plan %d: %s", id, outcome.FinalVerdict)
		return nil
	}

	plans, err := resolveWorkPlans(ctx, d, args)
	if err != nil {
		printErr(err)
		return err
	}

	result := scheduler.Run(ctx, plans, d.Orch.CanStart, func(ctx context.Context, plan *core.Plan) error {
		_, err := d.Orch.RunPlan(ctx, plan.ID)
		return err
	})

	for _, p := range result.Ran {
		printInfo("plan %d: ran", p.ID)
	}
	for _, s := range result.Skipped {
		printInfo("plan %d: skipped (%s)", s.Plan.ID, s.Reason)
	}
	for _, f := range result.Failed {
		printErr(f.Err)
	}
	return nil
}

func resolveWorkPlans(ctx context.Context, d *deps, args []string) ([]*core.Plan, error) {
	if len(args) == 0 {
		return d.Store.UnblockedOpenTasks(ctx)
	}
	plans := make([]*core.Plan, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		plan, err := d.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
