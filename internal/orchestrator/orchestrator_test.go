package orchestrator

import (
	"context"
	"testing"

	"github.com/avery-ling/task-tracker/internal/core"
)

type fakeStore struct {
	plans map[int64]*core.Plan
}

func (f *fakeStore) Get(_ context.Context, id int64) (*core.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, core.ErrNotFound("plan", id)
	}
	return p, nil
}

func (f *fakeStore) GetDependency(_ context.Context, id int64) (*core.Plan, error) {
	p := f.plans[id]
	if p == nil || !p.HasDependency() {
		return nil, nil
	}
	return f.plans[p.DependsOnID], nil
}

func (f *fakeStore) UpdateBranch(context.Context, int64, string) error      { return nil }
func (f *fakeStore) UpdateWorktreePath(context.Context, int64, string) error { return nil }
func (f *fakeStore) UpdateStatus(context.Context, int64, core.Status) error  { return nil }
func (f *fakeStore) UpdateSession(context.Context, int64, string) error     { return nil }

func TestCanStart_NoDependencyAllowed(t *testing.T) {
	store := &fakeStore{plans: map[int64]*core.Plan{
		1: {ID: 1, Status: core.StatusOpen},
	}}
	o := &Orchestrator{Store: store}

	guard, err := o.CanStart(context.Background(), store.plans[1])
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if !guard.Allowed {
		t.Error("expected a plan with no dependency to be allowed to start")
	}
}

func TestCanStart_BlockedByOpenPredecessor(t *testing.T) {
	store := &fakeStore{plans: map[int64]*core.Plan{
		1: {ID: 1, Status: core.StatusOpen},
		2: {ID: 2, Status: core.StatusOpen, DependsOnID: 1},
	}}
	o := &Orchestrator{Store: store}

	guard, err := o.CanStart(context.Background(), store.plans[2])
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if guard.Allowed {
		t.Error("expected plan 2 to be blocked while plan 1 is still open")
	}
}

func TestCanStart_UnblockedOnceInReview(t *testing.T) {
	store := &fakeStore{plans: map[int64]*core.Plan{
		1: {ID: 1, Status: core.StatusInReview},
		2: {ID: 2, Status: core.StatusOpen, DependsOnID: 1},
	}}
	o := &Orchestrator{Store: store}

	guard, err := o.CanStart(context.Background(), store.plans[2])
	if err != nil {
		t.Fatalf("CanStart() error = %v", err)
	}
	if !guard.Allowed {
		t.Error("expected plan 2 to be unblocked once plan 1 is in-review")
	}
}
