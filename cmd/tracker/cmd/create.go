package cmd

import (
	"github.com/spf13/cobra"
)

var (
	createProjectPath string
	createDescription string
	createDependsOn   int64
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new plan with no plan file yet",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createProjectPath, "project", "p", "", "project directory (required)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "free-text description")
	createCmd.Flags().Int64Var(&createDependsOn, "depends-on", 0, "id of the plan this one depends on")
}

func runCreate(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	plan, err := d.Store.CreateTask(cmd.Context(), createProjectPath, args[0], createDescription)
	if err != nil {
		printErr(err)
		return err
	}

	if createDependsOn != 0 {
		if err := d.Store.SetDependency(cmd.Context(), plan.ID, createDependsOn); err != nil {
			printErr(err)
			return err
		}
	}

	printInfo("created plan %d: %s", plan.ID, plan.Title)
	return nil
}
