package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a plan stuck in-progress after an interrupted run",
	Long: `The review loop always starts a fresh agent session per invocation, so
there is no lower-level support for continuing an old agent
conversation across separate CLI invocations. resume instead re-runs
the plan from scratch against the same branch/worktree, for the case
where the CLI process that was driving a plan was killed mid-run and
left it stuck in in-progress.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
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
	if plan.Status != core.StatusInProgress {
		err := fmt.Errorf("plan %d is %s, not in-progress; resume only recovers interrupted runs", id, plan.Status)
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
