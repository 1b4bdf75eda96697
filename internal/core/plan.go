package core

import "time"

// Plan is a persisted task record with an attached markdown implementation
// document. Identity is a monotonic integer id assigned by the Store.
type Plan struct {
	ID                 int64
	PlanPath           string // absolute path; empty while still being drafted
	Title              string
	Description        string
	ProjectPath        string // absolute path
	DisplayName        string
	Status             Status
	Branch             string // empty until work starts
	SessionID          string // opaque agent session handle; empty until work starts
	PlanningSessionID  string // separate handle, for iterative plan drafting
	WorktreePath       string // empty when not isolated
	DependsOnID        int64  // 0 means no dependency
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasDependency reports whether the plan declares an outgoing dependency
// edge.
func (p *Plan) HasDependency() bool {
	return p.DependsOnID != 0
}

// Started reports whether work has actually been performed on this plan:
// both branch and session must be set once status leaves open.
func (p *Plan) Started() bool {
	return p.Branch != "" && p.SessionID != ""
}
