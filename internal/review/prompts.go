package review

import (
	"strings"
	"text/template"
)

var workerTemplate = template.Must(template.New("worker").Parse(
	`Implement the following plan in the current repository.

<plan>
{{.PlanContent}}
</plan>

Run any repo-local test, lint, and typecheck scripts you can find before
concluding your work. Add verification scripts if the repository has none
for what you changed. When you are satisfied, commit your changes locally
with a descriptive message. Do not push.
`))

var reviewerTemplate = template.Must(template.New("reviewer").Parse(
	`Review the following change against its plan for completeness,
correctness, and quality.

<plan>
{{.PlanContent}}
</plan>

<diff>
{{.Diff}}
</diff>

Conclude your review with exactly one verdict tag on its own line:
<verdict>APPROVE</verdict> if the change fully and correctly implements
the plan, or <verdict>REQUEST_CHANGES</verdict> otherwise, along with the
specific changes needed.
`))

var revisionTemplate = template.Must(template.New("revision").Parse(
	`Address the following review feedback with a new commit.

<review_feedback>
{{.Feedback}}
</review_feedback>

Run any repo-local test, lint, and typecheck scripts again before
concluding. Commit your changes locally. Do not push.
`))

// WorkerPrompt renders the initial implementation prompt.
func WorkerPrompt(planContent string) string {
	return render(workerTemplate, struct{ PlanContent string }{planContent})
}

// ReviewPrompt renders the reviewer's prompt, supplying the plan and diff.
func ReviewPrompt(planContent, diff string) string {
	return render(reviewerTemplate, struct {
		PlanContent string
		Diff        string
	}{planContent, diff})
}

// RevisionPrompt renders the worker's revision prompt from reviewer
// feedback.
func RevisionPrompt(feedback string) string {
	return render(revisionTemplate, struct{ Feedback string }{feedback})
}

func render(t *template.Template, data interface{}) string {
	var sb strings.Builder
	// template execution against a fixed, already-parsed template with a
	// plain struct of strings cannot fail.
	_ = t.Execute(&sb, data)
	return sb.String()
}
