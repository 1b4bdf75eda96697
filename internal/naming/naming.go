// Package naming derives the branch and log-file names that the CLI and
// the dashboard API must agree on, since either can spawn a plan's work.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, collapses every run of non-alphanumeric characters
// to a single "-", trims leading/trailing "-", and truncates to 50
// characters. An empty or fully-punctuated title slugs to "".
func Slug(s string) string {
	lower := strings.ToLower(s)
	collapsed := nonAlphanumericRun.ReplaceAllString(lower, "-")
	trimmed := strings.Trim(collapsed, "-")
	if len(trimmed) > 50 {
		trimmed = strings.Trim(trimmed[:50], "-")
	}
	return trimmed
}

// BranchName derives plan/<id>-<slug(title)>. A title that slugs to ""
// still yields a valid branch name, since the id prefix is unconditional.
func BranchName(id int64, title string) string {
	slug := Slug(title)
	if slug == "" {
		return fmt.Sprintf("plan/%d", id)
	}
	return fmt.Sprintf("plan/%d-%s", id, slug)
}

// LogFileName derives <id>-<iso-utc-timestamp-with-dashes>.jsonl. The
// caller joins this against the logs directory.
func LogFileName(id int64, at time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(at.UTC().Format(time.RFC3339Nano))
	return fmt.Sprintf("%d-%s.jsonl", id, stamp)
}
