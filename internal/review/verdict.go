package review

import "regexp"

// Verdict is the reviewer's conclusion for one round.
type Verdict string

const (
	VerdictApprove        Verdict = "APPROVE"
	VerdictRequestChanges Verdict = "REQUEST_CHANGES"
)

// verdictPattern is part of the wire protocol between worker and reviewer
// invocations of the same agent binary; changing it requires coordinated
// updates to both prompt templates.
var verdictPattern = regexp.MustCompile(`<verdict>(APPROVE|REQUEST_CHANGES)</verdict>`)

// ParseVerdict scans transcript for verdict tags and returns the last
// match along with the feedback to carry into a revision prompt. A
// missing tag is treated as REQUEST_CHANGES with the full transcript as
// feedback, so a malformed or truncated reviewer response still makes
// bounded progress instead of wedging the loop.
func ParseVerdict(transcript string) (verdict Verdict, feedback string) {
	matches := verdictPattern.FindAllStringSubmatchIndex(transcript, -1)
	if len(matches) == 0 {
		return VerdictRequestChanges, transcript
	}
	last := matches[len(matches)-1]
	v := Verdict(transcript[last[2]:last[3]])
	return v, transcript
}
