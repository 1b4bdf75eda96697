package core

// Dependency is the single outgoing edge a plan may declare: at most one
// predecessor. A plan may not start until its predecessor is in
// {in-review, completed}; a plan may not complete until its predecessor is
// completed. This asymmetric rule lets downstream work begin while
// upstream is still under review.
type Dependency struct {
	PlanID    int64
	DependsOn int64
}

// ValidateDependency checks, in the order the spec requires, that setting
// candidate as id's dependency is legal: candidate exists, is in the same
// project as id, is not id itself, and does not close a cycle. wouldCycle
// is supplied by the caller (Store.would_create_cycle is the canonical
// primitive; this function only sequences the checks).
func ValidateDependency(id int64, candidate *Plan, dependent *Plan, wouldCycle bool) error {
	if candidate == nil {
		return ErrDependencyMissing(id)
	}
	if dependent != nil && candidate.ProjectPath != dependent.ProjectPath {
		return ErrDependencyCrossProject(id, candidate.ID)
	}
	if dependent != nil && candidate.ID == dependent.ID {
		return &DomainError{
			Category:  ErrCatDependency,
			Code:      CodeDependencySelf,
			Message:   "a plan cannot depend on itself",
			Retryable: false,
		}
	}
	if wouldCycle {
		return ErrDependencyCycle(id, candidate.ID)
	}
	return nil
}
