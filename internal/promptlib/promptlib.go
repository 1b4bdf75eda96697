// Package promptlib holds the prompt templates used to drive the agent in
// plan-drafting mode, shared by the dashboard API and the CLI so both entry
// points ask the agent for a plan document in the same words.
package promptlib

import (
	"strings"
	"text/template"
)

var draftPlanTemplate = template.Must(template.New("draft-plan").Parse(
	`Draft an implementation plan for the following task, as a single
markdown document.

Title: {{.Title}}
{{if .Description}}Description: {{.Description}}
{{end}}
Respond with the complete markdown document only, starting with a single
"# <title>" heading, followed by whatever sections (context, approach,
steps, risks) make sense for this task. Do not implement anything yet.
`))

var revisePlanTemplate = template.Must(template.New("revise-plan").Parse(
	`Revise the plan document below per the following instruction, and
respond with the complete, updated markdown document only.

<plan>
{{.PlanContent}}
</plan>

<instruction>
{{.Instruction}}
</instruction>
`))

// DraftPlan renders the one-shot prompt used to generate a plan document
// for a task that has no plan file yet.
func DraftPlan(title, description string) string {
	var sb strings.Builder
	_ = draftPlanTemplate.Execute(&sb, struct{ Title, Description string }{title, description})
	return sb.String()
}

// RevisePlan renders the prompt used to revise an existing plan document
// per a free-text instruction.
func RevisePlan(planContent, instruction string) string {
	var sb strings.Builder
	_ = revisePlanTemplate.Execute(&sb, struct{ PlanContent, Instruction string }{planContent, instruction})
	return sb.String()
}
