package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/core"
)

var listProjectPath string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listProjectPath, "project", "p", "", "limit to plans in this project directory")
}

func runList(cmd *cobra.Command, _ []string) error {
	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	var plans []*core.Plan
	if listProjectPath != "" {
		plans, err = d.Store.ListByProject(cmd.Context(), listProjectPath)
	} else {
		plans, err = d.Store.List(cmd.Context())
	}
	if err != nil {
		printErr(err)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tPROJECT\tDEPENDS-ON")
	for _, p := range plans {
		dep := "-"
		if p.HasDependency() {
			dep = fmt.Sprintf("%d", p.DependsOnID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Status, p.Title, p.ProjectPath, dep)
	}
	return w.Flush()
}
