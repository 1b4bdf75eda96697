package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avery-ling/task-tracker/internal/core"
)

const selectColumns = `id, plan_path, title, description, project_path, display_name,
	status, branch, session_id, planning_session_id, worktree_path, depends_on_id,
	created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*core.Plan, error) {
	var p core.Plan
	var dependsOn sql.NullInt64
	var status string
	if err := row.Scan(
		&p.ID, &p.PlanPath, &p.Title, &p.Description, &p.ProjectPath, &p.DisplayName,
		&status, &p.Branch, &p.SessionID, &p.PlanningSessionID, &p.WorktreePath, &dependsOn,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = core.Status(status)
	if dependsOn.Valid {
		p.DependsOnID = dependsOn.Int64
	}
	return &p, nil
}

// AddPlan inserts a new plan record with a plan file already attached.
func (s *Store) AddPlan(ctx context.Context, planPath, projectPath, title string) (*core.Plan, error) {
	return s.insert(ctx, planPath, projectPath, title, "")
}

// CreateTask inserts a new plan record with no plan file yet (empty
// plan_path); the plan may be drafted later via the planning session.
func (s *Store) CreateTask(ctx context.Context, projectPath, title, description string) (*core.Plan, error) {
	return s.insert(ctx, "", projectPath, title, description)
}

func (s *Store) insert(ctx context.Context, planPath, projectPath, title, description string) (*core.Plan, error) {
	if projectPath == "" {
		return nil, core.ErrValidation(core.CodeEmptyProject, "project path is required")
	}

	var id int64
	err := s.retryWrite(ctx, "add_plan", func() error {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO plans (plan_path, title, description, project_path, status)
			VALUES (?, ?, ?, ?, ?)`,
			planPath, title, description, projectPath, core.StatusOpen)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get fetches a single plan by id.
func (s *Store) Get(ctx context.Context, id int64) (*core.Plan, error) {
	row := s.readDB.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM plans WHERE id = ?", id)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound("plan", id)
		}
		return nil, core.ErrIO("get plan", err)
	}
	return p, nil
}

// List returns every plan, ordered by project then recency.
func (s *Store) List(ctx context.Context) ([]*core.Plan, error) {
	return s.query(ctx, "SELECT "+selectColumns+" FROM plans ORDER BY project_path, created_at DESC")
}

// ListByProject returns every plan for a given project, most recent first.
func (s *Store) ListByProject(ctx context.Context, projectPath string) ([]*core.Plan, error) {
	return s.query(ctx, "SELECT "+selectColumns+" FROM plans WHERE project_path = ? ORDER BY created_at DESC", projectPath)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]*core.Plan, error) {
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.ErrIO("query plans", err)
	}
	defer rows.Close()

	var plans []*core.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, core.ErrIO("scan plan", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// UpdateStatus sets a plan's status. Idempotent with the target value.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status core.Status) error {
	return s.updateField(ctx, "update_status", id, "status", string(status))
}

// UpdateBranch sets a plan's branch name.
func (s *Store) UpdateBranch(ctx context.Context, id int64, branch string) error {
	return s.updateField(ctx, "update_branch", id, "branch", branch)
}

// UpdateSession sets a plan's agent session handle.
func (s *Store) UpdateSession(ctx context.Context, id int64, sessionID string) error {
	return s.updateField(ctx, "update_session", id, "session_id", sessionID)
}

// UpdatePlanningSession sets a plan's planning session handle.
func (s *Store) UpdatePlanningSession(ctx context.Context, id int64, sessionID string) error {
	return s.updateField(ctx, "update_planning_session", id, "planning_session_id", sessionID)
}

// UpdatePlanPath sets a plan's plan-file path.
func (s *Store) UpdatePlanPath(ctx context.Context, id int64, path string) error {
	return s.updateField(ctx, "update_plan_path", id, "plan_path", path)
}

// UpdateWorktreePath sets a plan's worktree path.
func (s *Store) UpdateWorktreePath(ctx context.Context, id int64, path string) error {
	return s.updateField(ctx, "update_worktree_path", id, "worktree_path", path)
}

// UpdateTitle sets a plan's title.
func (s *Store) UpdateTitle(ctx context.Context, id int64, title string) error {
	return s.updateField(ctx, "update_title", id, "title", title)
}

func (s *Store) updateField(ctx context.Context, op string, id int64, column, value string) error {
	return s.retryWrite(ctx, op, func() error {
		res, err := s.db.ExecContext(ctx,
			"UPDATE plans SET "+column+" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", value, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound("plan", id)
		}
		return nil
	})
}

// Delete removes a plan record. Rejected while it has dependents; callers
// must check core.CanDelete first.
func (s *Store) Delete(ctx context.Context, id int64) error {
	dependents, err := s.GetDependents(ctx, id)
	if err != nil {
		return err
	}
	if guard := core.CanDelete(dependents); !guard.Allowed {
		return core.ErrState(core.CodeHasDependents, guard.Reason)
	}
	return s.retryWrite(ctx, "delete", func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound("plan", id)
		}
		return nil
	})
}
