package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/avery-ling/task-tracker/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "plans.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_AddPlanAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.AddPlan(ctx, "/r/PLAN.md", "/r", "Add X")
	if err != nil {
		t.Fatalf("AddPlan() error = %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if p.Status != core.StatusOpen {
		t.Errorf("Status = %s, want open", p.Status)
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Add X" {
		t.Errorf("Title = %q, want %q", got.Title, "Add X")
	}
}

func TestStore_CreateTask_EmptyPlanPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateTask(ctx, "/r", "Add Y", "description")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if p.PlanPath != "" {
		t.Errorf("PlanPath = %q, want empty", p.PlanPath)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 999)
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestStore_ListByProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, "/r1", "A", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTask(ctx, "/r2", "B", ""); err != nil {
		t.Fatal(err)
	}

	plans, err := s.ListByProject(ctx, "/r1")
	if err != nil {
		t.Fatalf("ListByProject() error = %v", err)
	}
	if len(plans) != 1 || plans[0].Title != "A" {
		t.Fatalf("ListByProject(/r1) = %+v, want one plan titled A", plans)
	}
}

func TestStore_UpdateStatus_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, _ := s.CreateTask(ctx, "/r", "A", "")

	if err := s.UpdateStatus(ctx, p.ID, core.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if err := s.UpdateStatus(ctx, p.ID, core.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus() re-invoke error = %v", err)
	}
	got, _ := s.Get(ctx, p.ID)
	if got.Status != core.StatusInProgress {
		t.Errorf("Status = %s, want in-progress", got.Status)
	}
}

func TestStore_UpdateBranchSessionWorktree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, _ := s.CreateTask(ctx, "/r", "A", "")

	if err := s.UpdateBranch(ctx, p.ID, "plan/1-a"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateSession(ctx, p.ID, "session-uuid"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateWorktreePath(ctx, p.ID, "/wt/r/1"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, p.ID)
	if got.Branch != "plan/1-a" || got.SessionID != "session-uuid" || got.WorktreePath != "/wt/r/1" {
		t.Errorf("got = %+v, fields did not persist", got)
	}
	if !got.Started() {
		t.Error("plan with branch and session should report Started()")
	}
}

func TestStore_Delete_RejectedWithDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")
	b, _ := s.CreateTask(ctx, "/r", "B", "")

	if err := s.SetDependency(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("SetDependency() error = %v", err)
	}

	err := s.Delete(ctx, a.ID)
	if !core.IsCategory(err, core.ErrCatState) {
		t.Fatalf("expected state error deleting plan with dependents, got %v", err)
	}
}

func TestStore_Delete_AllowedWithoutDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, a.ID); !core.IsCategory(err, core.ErrCatNotFound) {
		t.Error("expected plan to be gone after delete")
	}
}

func TestStore_SetDependency_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")
	b, _ := s.CreateTask(ctx, "/r", "B", "")

	if err := s.SetDependency(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("SetDependency() error = %v", err)
	}
	dep, err := s.GetDependency(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetDependency() error = %v", err)
	}
	if dep == nil || dep.ID != a.ID {
		t.Fatalf("GetDependency() = %+v, want plan %d", dep, a.ID)
	}

	if err := s.SetDependency(ctx, b.ID, 0); err != nil {
		t.Fatalf("SetDependency(clear) error = %v", err)
	}
	dep, err = s.GetDependency(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetDependency() error = %v", err)
	}
	if dep != nil {
		t.Fatalf("GetDependency() after clear = %+v, want nil", dep)
	}
}

func TestStore_SetDependency_RejectsCycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")
	b, _ := s.CreateTask(ctx, "/r", "B", "")

	if err := s.SetDependency(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("SetDependency() error = %v", err)
	}

	err := s.SetDependency(ctx, a.ID, b.ID)
	de, ok := err.(*core.DomainError)
	if !ok || de.Code != core.CodeDependencyCycle {
		t.Fatalf("expected dependency-cycle error, got %v", err)
	}
}

func TestStore_SetDependency_RejectsCrossProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r1", "A", "")
	b, _ := s.CreateTask(ctx, "/r2", "B", "")

	err := s.SetDependency(ctx, b.ID, a.ID)
	de, ok := err.(*core.DomainError)
	if !ok || de.Code != core.CodeDependencyCrossProject {
		t.Fatalf("expected cross-project error, got %v", err)
	}
}

func TestStore_WouldCreateCycle_Self(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")

	cycles, err := s.WouldCreateCycle(ctx, a.ID, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !cycles {
		t.Error("a plan depending on itself should be detected as a cycle")
	}
}

func TestStore_GetDependencyChain_RootToLeaf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")
	b, _ := s.CreateTask(ctx, "/r", "B", "")
	c, _ := s.CreateTask(ctx, "/r", "C", "")

	if err := s.SetDependency(ctx, b.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDependency(ctx, c.ID, b.ID); err != nil {
		t.Fatal(err)
	}

	chain, err := s.GetDependencyChain(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetDependencyChain() error = %v", err)
	}
	if len(chain) != 2 || chain[0].ID != a.ID || chain[1].ID != b.ID {
		t.Fatalf("GetDependencyChain() = %+v, want [A, B]", chain)
	}
}

func TestStore_UnblockedAndBlockedTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateTask(ctx, "/r", "A", "")
	b, _ := s.CreateTask(ctx, "/r", "B", "")
	if err := s.SetDependency(ctx, b.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	blocked, err := s.BlockedTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocked) != 1 || blocked[0].ID != b.ID {
		t.Fatalf("BlockedTasks() = %+v, want [B]", blocked)
	}

	if err := s.UpdateStatus(ctx, a.ID, core.StatusInReview); err != nil {
		t.Fatal(err)
	}

	unblocked, err := s.UnblockedOpenTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, p := range unblocked {
		if p.ID == b.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("UnblockedOpenTasks() = %+v, want to include B once A is in-review", unblocked)
	}
}

func TestStore_ReopenExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "plans.db")
	s1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	p, err := s1.CreateTask(context.Background(), "/r", "A", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.Title != "A" {
		t.Errorf("Title = %q after reopen, want %q", got.Title, "A")
	}
}
