package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avery-ling/task-tracker/internal/config"
	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/logging"
	"github.com/avery-ling/task-tracker/internal/review"
)

type fakeStore struct {
	plans      map[int64]*core.Plan
	nextID     int64
	deleted    []int64
	deps       map[int64]int64
	createErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{plans: map[int64]*core.Plan{}, nextID: 1, deps: map[int64]int64{}}
}

func (f *fakeStore) Get(_ context.Context, id int64) (*core.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, core.ErrNotFound("plan", id)
	}
	return p, nil
}
func (f *fakeStore) GetDependency(_ context.Context, id int64) (*core.Plan, error) {
	dep, ok := f.deps[id]
	if !ok || dep == 0 {
		return nil, nil
	}
	return f.plans[dep], nil
}
func (f *fakeStore) UpdateBranch(_ context.Context, id int64, branch string) error {
	f.plans[id].Branch = branch
	return nil
}
func (f *fakeStore) UpdateWorktreePath(_ context.Context, id int64, path string) error {
	f.plans[id].WorktreePath = path
	return nil
}
func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status core.Status) error {
	f.plans[id].Status = status
	return nil
}
func (f *fakeStore) UpdateSession(_ context.Context, id int64, sessionID string) error {
	f.plans[id].SessionID = sessionID
	return nil
}
func (f *fakeStore) UpdatePlanPath(_ context.Context, id int64, path string) error {
	f.plans[id].PlanPath = path
	return nil
}
func (f *fakeStore) UpdatePlanningSession(_ context.Context, id int64, sessionID string) error {
	f.plans[id].PlanningSessionID = sessionID
	return nil
}
func (f *fakeStore) List(context.Context) ([]*core.Plan, error) {
	var out []*core.Plan
	for _, p := range f.plans {
		out = append(out, p)
	}
	return out, nil
}
func (f *fakeStore) ListByProject(context.Context, string) ([]*core.Plan, error) { return nil, nil }
func (f *fakeStore) AddPlan(context.Context, string, string, string) (*core.Plan, error) {
	return nil, nil
}
func (f *fakeStore) CreateTask(_ context.Context, projectPath, title, description string) (*core.Plan, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.nextID
	f.nextID++
	p := &core.Plan{ID: id, Title: title, Description: description, ProjectPath: projectPath, Status: core.StatusOpen}
	f.plans[id] = p
	return p, nil
}
func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.plans, id)
	return nil
}
func (f *fakeStore) SetDependency(_ context.Context, id, dependsOn int64) error {
	f.deps[id] = dependsOn
	if dependsOn != 0 {
		f.plans[id].DependsOnID = dependsOn
	} else {
		f.plans[id].DependsOnID = 0
	}
	return nil
}
func (f *fakeStore) GetDependents(_ context.Context, id int64) ([]*core.Plan, error) {
	var out []*core.Plan
	for pid, dep := range f.deps {
		if dep == id {
			out = append(out, f.plans[pid])
		}
	}
	return out, nil
}
func (f *fakeStore) UnblockedOpenTasks(context.Context) ([]*core.Plan, error) { return nil, nil }

type fakeOrchestrator struct {
	guard core.Guard
}

func (f *fakeOrchestrator) CanStart(context.Context, *core.Plan) (core.Guard, error) {
	return f.guard, nil
}
func (f *fakeOrchestrator) RunPlan(context.Context, int64) (review.Outcome, error) {
	return review.Outcome{}, nil
}

func newTestServer() (*Server, *fakeStore) {
	fs := newFakeStore()
	s := &Server{
		store: fs,
		cfg:   config.Default(),
		orch:  &fakeOrchestrator{guard: core.Allow()},
	}
	s.logger = logging.NewNop()
	s.router = s.setupRouter()
	return s, fs
}

func TestHandleListPlans_Empty(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleCreatePlan_RequiresTitle(t *testing.T) {
	s, _ := newTestServer()

	body, _ := json.Marshal(createPlanRequest{ProjectPath: "/r"})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCreatePlan_Success(t *testing.T) {
	s, fs := newTestServer()

	body, _ := json.Marshal(createPlanRequest{Title: "Add X", ProjectPath: "/r"})
	req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	if len(fs.plans) != 1 {
		t.Errorf("expected 1 plan created, got %d", len(fs.plans))
	}
}

func TestHandleDeletePlan_RejectsNonOpen(t *testing.T) {
	s, fs := newTestServer()
	fs.plans[1] = &core.Plan{ID: 1, Status: core.StatusInProgress}

	req := httptest.NewRequest(http.MethodDelete, "/api/plans/1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestHandleDeletePlan_Open(t *testing.T) {
	s, fs := newTestServer()
	fs.plans[1] = &core.Plan{ID: 1, Status: core.StatusOpen}

	req := httptest.NewRequest(http.MethodDelete, "/api/plans/1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestHandleCanStart_Blocked(t *testing.T) {
	s, fs := newTestServer()
	s.orch = &fakeOrchestrator{guard: core.Deny("predecessor not ready", nil)}
	fs.plans[1] = &core.Plan{ID: 1, Status: core.StatusOpen, DependsOnID: 2}

	req := httptest.NewRequest(http.MethodGet, "/api/plans/1/can-start", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var guard guardDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &guard); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if guard.Allowed {
		t.Error("expected a blocked guard")
	}
}

func TestHandleUsage_ReflectsConfig(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleGetPlan_NotFound(t *testing.T) {
	s, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/plans/99", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
