package api

import (
	"context"
	"net/http"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/scheduler"
)

// handleWork spawns a worker for one plan. The HTTP response returns as
// soon as the can_start guard passes; the run itself continues in the
// background and is observable via /api/plans/:id/logs.
func (s *Server) handleWork(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	plan, err := s.store.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	guard, err := s.orch.CanStart(r.Context(), plan)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !guard.Allowed {
		respondJSON(w, http.StatusConflict, toGuardDTO(guard))
		return
	}

	go func() {
		if _, err := s.orch.RunPlan(context.Background(), id); err != nil {
			s.logger.WithPlan(id).Error("background plan run failed", "error", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, toDTO(plan))
}

// handleWorkAll spawns a worker for every currently-unblocked open plan,
// using the scheduler's per-project partitioning so sibling projects run
// concurrently while plans within one project run in submission order.
func (s *Server) handleWorkAll(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.UnblockedOpenTasks(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	go func() {
		ctx := context.Background()
		result := scheduler.Run(ctx, plans, s.orch.CanStart, func(ctx context.Context, plan *core.Plan) error {
			_, err := s.orch.RunPlan(ctx, plan.ID)
			return err
		})
		s.logger.Info("work-all finished", "ran", len(result.Ran), "skipped", len(result.Skipped), "failed", len(result.Failed))
	}()

	respondJSON(w, http.StatusAccepted, toDTOs(plans))
}
