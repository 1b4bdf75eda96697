package store

import (
	"context"
	"database/sql"

	"github.com/avery-ling/task-tracker/internal/core"
)

// SetDependency validates and sets (or clears, with depends_on = 0) id's
// outgoing dependency edge. Validation order: target exists, same
// project, not self, no cycle — matching core.ValidateDependency.
func (s *Store) SetDependency(ctx context.Context, id, dependsOn int64) error {
	if dependsOn == 0 {
		return s.retryWrite(ctx, "set_dependency", func() error {
			_, err := s.db.ExecContext(ctx,
				"UPDATE plans SET depends_on_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
			return err
		})
	}

	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	candidate, err := s.Get(ctx, dependsOn)
	if err != nil {
		return core.ErrDependencyMissing(dependsOn)
	}
	cycles, err := s.WouldCreateCycle(ctx, id, dependsOn)
	if err != nil {
		return err
	}
	if err := core.ValidateDependency(id, candidate, plan, cycles); err != nil {
		return err
	}

	return s.retryWrite(ctx, "set_dependency", func() error {
		_, err := s.db.ExecContext(ctx,
			"UPDATE plans SET depends_on_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", dependsOn, id)
		return err
	})
}

// GetDependency returns the plan a plan depends on, or nil if it has none.
func (s *Store) GetDependency(ctx context.Context, id int64) (*core.Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.HasDependency() {
		return nil, nil
	}
	return s.Get(ctx, plan.DependsOnID)
}

// GetDependents returns every plan whose dependency is id.
func (s *Store) GetDependents(ctx context.Context, id int64) ([]*core.Plan, error) {
	return s.query(ctx, "SELECT "+selectColumns+" FROM plans WHERE depends_on_id = ?", id)
}

// WouldCreateCycle is the canonical acyclicity primitive: would setting
// id's dependency to candidate create a cycle? It walks the chain of
// dependency edges starting at candidate, with a visited-set DFS, and
// reports true if that walk ever reaches id.
func (s *Store) WouldCreateCycle(ctx context.Context, id, candidate int64) (bool, error) {
	if id == candidate {
		return true, nil
	}
	visited := map[int64]bool{}
	current := candidate
	for current != 0 {
		if current == id {
			return true, nil
		}
		if visited[current] {
			// Existing graph already has a cycle; don't loop forever.
			return true, nil
		}
		visited[current] = true

		var next sql.NullInt64
		err := s.readDB.QueryRowContext(ctx, "SELECT depends_on_id FROM plans WHERE id = ?", current).Scan(&next)
		if err != nil {
			if err == sql.ErrNoRows {
				return false, nil
			}
			return false, core.ErrIO("walk dependency chain", err)
		}
		if !next.Valid {
			return false, nil
		}
		current = next.Int64
	}
	return false, nil
}

// GetDependencyChain returns the chain of predecessors for id, ordered
// root-to-leaf (the most upstream plan first, id's direct predecessor
// last).
func (s *Store) GetDependencyChain(ctx context.Context, id int64) ([]*core.Plan, error) {
	var chain []*core.Plan
	visited := map[int64]bool{id: true}

	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current := plan.DependsOnID
	for current != 0 {
		if visited[current] {
			break
		}
		visited[current] = true
		p, err := s.Get(ctx, current)
		if err != nil {
			break
		}
		chain = append(chain, p)
		current = p.DependsOnID
	}

	// Reverse into root-to-leaf order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// UnblockedOpenTasks returns every open plan whose can_start guard passes:
// no dependency, or predecessor has reached in-review or completed.
func (s *Store) UnblockedOpenTasks(ctx context.Context) ([]*core.Plan, error) {
	open, err := s.query(ctx, "SELECT "+selectColumns+" FROM plans WHERE status = ? ORDER BY project_path, created_at", core.StatusOpen)
	if err != nil {
		return nil, err
	}
	var unblocked []*core.Plan
	for _, p := range open {
		if !p.HasDependency() {
			unblocked = append(unblocked, p)
			continue
		}
		predecessor, err := s.Get(ctx, p.DependsOnID)
		if err != nil {
			continue
		}
		if predecessor.Status.ReadyForWork() {
			unblocked = append(unblocked, p)
		}
	}
	return unblocked, nil
}

// BlockedTasks returns every open plan whose can_start guard currently
// fails.
func (s *Store) BlockedTasks(ctx context.Context) ([]*core.Plan, error) {
	open, err := s.query(ctx, "SELECT "+selectColumns+" FROM plans WHERE status = ? ORDER BY project_path, created_at", core.StatusOpen)
	if err != nil {
		return nil, err
	}
	var blocked []*core.Plan
	for _, p := range open {
		if !p.HasDependency() {
			continue
		}
		predecessor, err := s.Get(ctx, p.DependsOnID)
		if err != nil {
			blocked = append(blocked, p)
			continue
		}
		if !predecessor.Status.ReadyForWork() {
			blocked = append(blocked, p)
		}
	}
	return blocked, nil
}
