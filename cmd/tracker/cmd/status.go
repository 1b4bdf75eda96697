package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/statemachine"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Manually transition a plan's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printErr(err)
		return err
	}
	to := core.Status(args[1])
	if !to.Valid() {
		err := fmt.Errorf("invalid status %q", args[1])
		printErr(err)
		return err
	}

	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	plan, err := d.Store.Get(cmd.Context(), id)
	if err != nil {
		printErr(err)
		return err
	}

	if !statemachine.CanTransition(plan.Status, to) {
		err := fmt.Errorf("cannot transition plan %d from %s to %s", id, plan.Status, to)
		printErr(err)
		return err
	}

	if err := d.Store.UpdateStatus(cmd.Context(), id, to); err != nil {
		printErr(err)
		return err
	}

	printInfo("plan %d: %s -> %s", id, plan.Status, to)
	return nil
}
