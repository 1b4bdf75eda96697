package api

import (
	"net/http"

	"github.com/avery-ling/task-tracker/internal/usage"
)

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, usage.CurrentSnapshot(s.cfg))
}
