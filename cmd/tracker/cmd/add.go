package cmd

import (
	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/planfile"
)

var addCmd = &cobra.Command{
	Use:   "add <plan-path> <project-dir>",
	Short: "Register a plan from an existing markdown plan file",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	planPath, projectPath := args[0], args[1]

	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	title := planfile.ParseTitle(planPath)
	plan, err := d.Store.AddPlan(cmd.Context(), planPath, projectPath, title)
	if err != nil {
		printErr(err)
		return err
	}

	printInfo("added plan %d: %s", plan.ID, plan.Title)
	return nil
}
