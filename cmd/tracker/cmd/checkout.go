package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <id>",
	Short: "Print the working directory for a plan's branch",
	Long: `Prints the plan's worktree path (or its project directory, when
worktrees are unsupported) to stdout. A subprocess cannot change its
parent shell's working directory, so this command only prints the
path; pair it with the shell function installed by
"install-shell-function" to actually cd into it.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
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

	plan, err := d.Store.Get(cmd.Context(), id)
	if err != nil {
		printErr(err)
		return err
	}

	if !plan.Started() {
		err := fmt.Errorf("plan %d has not started yet, nothing to check out", id)
		printErr(err)
		return err
	}

	path := plan.WorktreePath
	if path == "" {
		path = plan.ProjectPath
	}
	fmt.Println(path)
	return nil
}
