package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/fsutil"
)

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.ErrValidation(core.CodeEmptyTitle, "invalid plan id: "+raw)
	}
	return id, nil
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDTOs(plans))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, toDTO(plan))
}

type createPlanRequest struct {
	Title       string `json:"title"`
	ProjectPath string `json:"projectPath"`
	Description string `json:"description"`
	DependsOnID *int64 `json:"dependsOnId"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondDomainError(w, core.ErrValidation(core.CodeEmptyTitle, "title is required"))
		return
	}

	plan, err := s.store.CreateTask(r.Context(), req.ProjectPath, req.Title, req.Description)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if req.DependsOnID != nil {
		if err := s.store.SetDependency(r.Context(), plan.ID, *req.DependsOnID); err != nil {
			respondDomainError(w, err)
			return
		}
		plan, err = s.store.Get(r.Context(), plan.ID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusCreated, toDTO(plan))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
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
	if plan.Status != core.StatusOpen {
		respondDomainError(w, core.ErrState(core.CodeInvalidStatus, "only an open plan may be deleted"))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlanContent(w http.ResponseWriter, r *http.Request) {
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
	if plan.PlanPath == "" {
		respondError(w, http.StatusNotFound, "plan has no attached plan file yet")
		return
	}

	data, err := fsutil.ReadFileScoped(plan.PlanPath)
	if err != nil {
		respondDomainError(w, core.ErrIO("read plan file", err))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleGetDependency(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	dep, err := s.store.GetDependency(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if dep == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"dependsOnId": nil})
		return
	}
	respondJSON(w, http.StatusOK, toDTO(dep))
}

type setDependencyRequest struct {
	DependsOnID int64 `json:"dependsOnId"`
}

func (s *Server) handleSetDependency(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var req setDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.SetDependency(r.Context(), id, req.DependsOnID); err != nil {
		respondDomainError(w, err)
		return
	}
	plan, err := s.store.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDTO(plan))
}

func (s *Server) handleDependents(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	dependents, err := s.store.GetDependents(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDTOs(dependents))
}

func (s *Server) handleCanStart(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, toGuardDTO(guard))
}
