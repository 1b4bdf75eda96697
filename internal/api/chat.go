package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/avery-ling/task-tracker/internal/agent"
	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/fsutil"
)

func (s *Server) planFilePath(id int64) string {
	return filepath.Join(s.plansDir, fmt.Sprintf("%d.md", id))
}

// handleGeneratePlan drafts a plan document for a plan with no attached
// plan file yet by calling the agent in one-shot mode, then persists the
// result as the plan's plan file.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
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

	sessionID := uuid.NewString()
	result, err := s.runPlanningAgent(r, plan, draftPlanPrompt(plan.Title, plan.Description), sessionID, false)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := s.persistPlanDraft(r.Context(), plan, result.Transcript, sessionID); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"planContent": result.Transcript})
}

type chatRequest struct {
	Message string `json:"message"`
}

// handleChat streams one round of plan-editing dialogue over SSE. The
// agent's reply is not available incrementally from AgentRunner (it
// returns the full transcript only once the subprocess exits), so this
// sends a single "message" event with the complete reply rather than a
// token-by-token stream, followed by "done".
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
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

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	planContent, err := s.readPlanContent(plan)
	if err != nil {
		sendSSE(w, flusher, "error", err.Error())
		return
	}

	resume := plan.PlanningSessionID != ""
	sessionID := plan.PlanningSessionID
	if !resume {
		sessionID = uuid.NewString()
	}

	result, err := s.runPlanningAgent(r, plan, revisePlanPrompt(planContent, req.Message), sessionID, resume)
	if err != nil {
		sendSSE(w, flusher, "error", err.Error())
		return
	}

	if err := s.persistPlanDraft(r.Context(), plan, result.Transcript, sessionID); err != nil {
		sendSSE(w, flusher, "error", err.Error())
		return
	}

	sendSSE(w, flusher, "message", result.Transcript)
	sendSSE(w, flusher, "done", "ok")
}

func (s *Server) runPlanningAgent(r *http.Request, plan *core.Plan, prompt, sessionID string, resume bool) (agent.Result, error) {
	logPath := filepath.Join(s.logsDir, fmt.Sprintf("%d-planning.jsonl", plan.ID))
	return s.runner.Run(r.Context(), agent.RunOptions{
		PlanID:          plan.ID,
		Role:            agent.RoleWorker,
		Prompt:          prompt,
		SessionID:       sessionID,
		Resume:          resume,
		WorkDir:         plan.ProjectPath,
		LogPath:         logPath,
		SkipPermissions: s.cfg.SkipPermissions,
	})
}

func (s *Server) readPlanContent(plan *core.Plan) (string, error) {
	if plan.PlanPath == "" {
		return "", nil
	}
	data, err := fsutil.ReadFileScoped(plan.PlanPath)
	if err != nil {
		return "", core.ErrIO("read plan file", err)
	}
	return string(data), nil
}

func (s *Server) persistPlanDraft(ctx context.Context, plan *core.Plan, content, sessionID string) error {
	path := plan.PlanPath
	if path == "" {
		path = s.planFilePath(plan.ID)
	}
	if err := os.MkdirAll(s.plansDir, 0o750); err != nil {
		return core.ErrIO("create plans directory", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return core.ErrIO("write plan file", err)
	}
	if plan.PlanPath == "" {
		if err := s.store.UpdatePlanPath(ctx, plan.ID, path); err != nil {
			return err
		}
	}
	return s.store.UpdatePlanningSession(ctx, plan.ID, sessionID)
}
