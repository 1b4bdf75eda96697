package review

import "testing"

func TestParseVerdict_Approve(t *testing.T) {
	v, _ := ParseVerdict("looks good\n<verdict>APPROVE</verdict>")
	if v != VerdictApprove {
		t.Errorf("ParseVerdict() = %q, want APPROVE", v)
	}
}

func TestParseVerdict_RequestChanges(t *testing.T) {
	v, feedback := ParseVerdict("needs work\n<verdict>REQUEST_CHANGES</verdict>")
	if v != VerdictRequestChanges {
		t.Errorf("ParseVerdict() = %q, want REQUEST_CHANGES", v)
	}
	if feedback == "" {
		t.Error("expected non-empty feedback")
	}
}

func TestParseVerdict_TakesLastMatch(t *testing.T) {
	transcript := "<verdict>REQUEST_CHANGES</verdict>\nactually wait\n<verdict>APPROVE</verdict>"
	v, _ := ParseVerdict(transcript)
	if v != VerdictApprove {
		t.Errorf("ParseVerdict() = %q, want the last tag (APPROVE)", v)
	}
}

func TestParseVerdict_NoMatchDefaultsToRequestChanges(t *testing.T) {
	transcript := "the agent rambled without a verdict tag"
	v, feedback := ParseVerdict(transcript)
	if v != VerdictRequestChanges {
		t.Errorf("ParseVerdict() = %q, want REQUEST_CHANGES on no match", v)
	}
	if feedback != transcript {
		t.Errorf("feedback = %q, want the full transcript on no match", feedback)
	}
}
