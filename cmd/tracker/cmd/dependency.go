package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setDependencyCmd = &cobra.Command{
	Use:   "set-dependency <id> <dep-id>",
	Short: "Make a plan depend on another plan in the same project",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetDependency,
}

var clearDependencyCmd = &cobra.Command{
	Use:   "clear-dependency <id>",
	Short: "Remove a plan's dependency, if any",
	Args:  cobra.ExactArgs(1),
	RunE:  runClearDependency,
}

var showDepsCmd = &cobra.Command{
	Use:   "show-deps <id>",
	Short: "Show a plan's dependency and dependents",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowDeps,
}

func init() {
	rootCmd.AddCommand(setDependencyCmd, clearDependencyCmd, showDepsCmd)
}

func runSetDependency(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printErr(err)
		return err
	}
	depID, err := parseID(args[1])
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

	if err := d.Store.SetDependency(cmd.Context(), id, depID); err != nil {
		printErr(err)
		return err
	}

	printInfo("plan %d now depends on plan %d", id, depID)
	return nil
}

func runClearDependency(cmd *cobra.Command, args []string) error {
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

	if err := d.Store.SetDependency(cmd.Context(), id, 0); err != nil {
		printErr(err)
		return err
	}

	printInfo("plan %d: dependency cleared", id)
	return nil
}

func runShowDeps(cmd *cobra.Command, args []string) error {
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

	dependency, err := d.Store.GetDependency(ctx, id)
	if err != nil {
		printErr(err)
		return err
	}
	dependents, err := d.Store.GetDependents(ctx, id)
	if err != nil {
		printErr(err)
		return err
	}

	if dependency == nil {
		fmt.Println("depends on: (none)")
	} else {
		fmt.Printf("depends on: %d (%s, %s)\n", dependency.ID, dependency.Title, dependency.Status)
	}

	if len(dependents) == 0 {
		fmt.Println("dependents: (none)")
		return nil
	}
	fmt.Println("dependents:")
	for _, dep := range dependents {
		fmt.Printf("  %d (%s, %s)\n", dep.ID, dep.Title, dep.Status)
	}
	return nil
}
