// Package scheduler fans a batch of plan ids out across projects: plans
// in the same project run serially in submission order, while distinct
// projects run concurrently. A plan whose dependency guard fails is
// skipped, never queued, since this is a one-shot process rather than a
// supervisor that wakes blocked work later.
package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/avery-ling/task-tracker/internal/core"
)

// CanStartFunc resolves the can_start guard for a plan (looking up its
// predecessor, if any).
type CanStartFunc func(ctx context.Context, plan *core.Plan) (core.Guard, error)

// WorkFunc performs one plan's run (worktree preparation, review loop,
// etc). The scheduler treats it as opaque.
type WorkFunc func(ctx context.Context, plan *core.Plan) error

// Skipped records a plan that was not claimed because its guard failed.
type Skipped struct {
	Plan   *core.Plan
	Reason string
}

// Failure records a plan whose WorkFunc returned an error.
type Failure struct {
	Plan *core.Plan
	Err  error
}

// Result summarizes one Run invocation across every project group.
type Result struct {
	Skipped []Skipped
	Failed  []Failure
	Ran     []*core.Plan
}

// Run partitions plans by ProjectPath (preserving submission order within
// each group) and executes each group's plans serially while groups run
// concurrently. It deliberately uses a bare errgroup.Group rather than
// errgroup.WithContext: one project's failure or its work functions'
// errors must never cancel a sibling project's in-flight run.
func Run(ctx context.Context, plans []*core.Plan, canStart CanStartFunc, work WorkFunc) Result {
	groups := groupByProject(plans)

	var (
		g      errgroup.Group
		mu     sync.Mutex
		result Result
	)

	for _, group := range groups {
		group := group
		g.Go(func() error {
			for _, plan := range group {
				guard, err := canStart(ctx, plan)
				if err != nil {
					mu.Lock()
					result.Failed = append(result.Failed, Failure{Plan: plan, Err: err})
					mu.Unlock()
					continue
				}
				if !guard.Allowed {
					mu.Lock()
					result.Skipped = append(result.Skipped, Skipped{Plan: plan, Reason: guard.Reason})
					mu.Unlock()
					continue
				}

				runErr := work(ctx, plan)

				mu.Lock()
				if runErr != nil {
					result.Failed = append(result.Failed, Failure{Plan: plan, Err: runErr})
				} else {
					result.Ran = append(result.Ran, plan)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait() // goroutines never return an error themselves; failures are collected above

	return result
}

// groupByProject partitions plans into per-project-path groups, preserving
// the relative submission order both within each group and across the
// groups slice itself (first-seen project sorts first).
func groupByProject(plans []*core.Plan) [][]*core.Plan {
	order := make([]string, 0)
	byProject := make(map[string][]*core.Plan)

	for _, p := range plans {
		if _, seen := byProject[p.ProjectPath]; !seen {
			order = append(order, p.ProjectPath)
		}
		byProject[p.ProjectPath] = append(byProject[p.ProjectPath], p)
	}

	groups := make([][]*core.Plan, 0, len(order))
	for _, project := range order {
		groups = append(groups, byProject[project])
	}
	return groups
}
