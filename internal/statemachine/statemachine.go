// Package statemachine implements the legal transitions across plan
// statuses and the guards that gate them: can-start, can-complete,
// can-delete.
package statemachine

import "github.com/avery-ling/task-tracker/internal/core"

// CanStart implements can_start(id): the dependency is null, or the
// predecessor has reached in-review or completed.
func CanStart(plan *core.Plan, predecessor *core.Plan) core.Guard {
	if !plan.HasDependency() {
		return core.Allow()
	}
	if predecessor == nil {
		return core.Deny("dependency target no longer exists", nil)
	}
	if predecessor.Status.ReadyForWork() {
		return core.Allow()
	}
	return core.Deny("predecessor is not yet in-review or completed", predecessor)
}

// CanComplete implements can_complete(id): the dependency is null, or the
// predecessor is completed.
func CanComplete(plan *core.Plan, predecessor *core.Plan) core.Guard {
	if !plan.HasDependency() {
		return core.Allow()
	}
	if predecessor == nil {
		return core.Deny("dependency target no longer exists", nil)
	}
	if predecessor.Status.ReadyForCompletion() {
		return core.Allow()
	}
	return core.Deny("predecessor is not yet completed", predecessor)
}

// CanTransition reports whether moving a plan from status "from" to
// "to" is one of the legal edges in the state machine, independent of any
// guard condition on the edge (can_start/can_complete are checked
// separately by the caller, since they require looking up the
// predecessor).
func CanTransition(from, to core.Status) bool {
	switch from {
	case core.StatusOpen:
		return to == core.StatusInProgress
	case core.StatusInProgress:
		return to == core.StatusInReview || to == core.StatusOpen
	case core.StatusInReview:
		return to == core.StatusCompleted || to == core.StatusOpen
	case core.StatusCompleted:
		return to == core.StatusOpen
	default:
		return false
	}
}
