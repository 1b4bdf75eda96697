package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/agent"
	"github.com/avery-ling/task-tracker/internal/fsutil"
	"github.com/avery-ling/task-tracker/internal/promptlib"
)

var planInstruction string

var planCmd = &cobra.Command{
	Use:   "plan <id>",
	Short: "Draft or revise a plan's markdown document via the agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planInstruction, "revise", "r", "",
		"revise the existing plan document per this instruction, instead of drafting a fresh one")
}

func runPlan(cmd *cobra.Command, args []string) error {
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

	var prompt, sessionID string
	resume := false
	if planInstruction != "" {
		content := ""
		if plan.PlanPath != "" {
			data, err := fsutil.ReadFileScoped(plan.PlanPath)
			if err != nil {
				printErr(err)
				return err
			}
			content = string(data)
		}
		prompt = promptlib.RevisePlan(content, planInstruction)
		resume = plan.PlanningSessionID != ""
		sessionID = plan.PlanningSessionID
		if !resume {
			sessionID = uuid.NewString()
		}
	} else {
		prompt = promptlib.DraftPlan(plan.Title, plan.Description)
		sessionID = uuid.NewString()
	}

	logPath := filepath.Join(d.LogsDir, fmt.Sprintf("%d-planning.jsonl", plan.ID))
	result, err := d.Runner.Run(cmd.Context(), agent.RunOptions{
		PlanID:          plan.ID,
		Role:            agent.RoleWorker,
		Prompt:          prompt,
		SessionID:       sessionID,
		Resume:          resume,
		WorkDir:         plan.ProjectPath,
		LogPath:         logPath,
		SkipPermissions: d.Config.SkipPermissions,
	})
	if err != nil {
		printErr(err)
		return err
	}

	path := plan.PlanPath
	if path == "" {
		path = filepath.Join(d.PlansDir, fmt.Sprintf("%d.md", plan.ID))
	}
	if err := os.MkdirAll(d.PlansDir, 0o750); err != nil {
		printErr(err)
		return err
	}
	if err := os.WriteFile(path, []byte(result.Transcript), 0o600); err != nil {
		printErr(err)
		return err
	}
	if plan.PlanPath == "" {
		if err := d.Store.UpdatePlanPath(cmd.Context(), plan.ID, path); err != nil {
			printErr(err)
			return err
		}
	}
	if err := d.Store.UpdatePlanningSession(cmd.Context(), plan.ID, sessionID); err != nil {
		printErr(err)
		return err
	}

	printInfo("wrote plan %d to %s", plan.ID, path)
	return nil
}
