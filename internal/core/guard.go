package core

// Guard is the typed result of a state-transition check. Guards never
// panic and never return a bare bool with no reason — callers need
// BlockedBy to report which plan is holding things up.
type Guard struct {
	Allowed   bool
	Reason    string
	BlockedBy *Plan
}

// Allow returns a passing guard.
func Allow() Guard {
	return Guard{Allowed: true}
}

// Deny returns a failing guard with a reason and, when known, the plan
// responsible for the block.
func Deny(reason string, blockedBy *Plan) Guard {
	return Guard{Allowed: false, Reason: reason, BlockedBy: blockedBy}
}

// CanDelete reports whether a plan may be deleted: it must have no live
// dependents.
func CanDelete(dependents []*Plan) Guard {
	if len(dependents) == 0 {
		return Allow()
	}
	return Deny("plan has dependents", dependents[0])
}
