package api

import "github.com/avery-ling/task-tracker/internal/promptlib"

func draftPlanPrompt(title, description string) string {
	return promptlib.DraftPlan(title, description)
}

func revisePlanPrompt(planContent, instruction string) string {
	return promptlib.RevisePlan(planContent, instruction)
}
