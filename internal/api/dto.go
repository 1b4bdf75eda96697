package api

import (
	"time"

	"github.com/avery-ling/task-tracker/internal/core"
)

// planDTO is the wire shape for a plan, decoupled from core.Plan's field
// names so the JSON surface doesn't shift with internal refactors.
type planDTO struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ProjectPath       string    `json:"projectPath"`
	DisplayName       string    `json:"displayName"`
	Status            string    `json:"status"`
	Branch            string    `json:"branch"`
	SessionID         string    `json:"sessionId"`
	PlanningSessionID string    `json:"planningSessionId"`
	WorktreePath      string    `json:"worktreePath"`
	DependsOnID       *int64    `json:"dependsOnId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toDTO(p *core.Plan) planDTO {
	dto := planDTO{
		ID:                p.ID,
		Title:             p.Title,
		Description:       p.Description,
		ProjectPath:       p.ProjectPath,
		DisplayName:       p.DisplayName,
		Status:            p.Status.String(),
		Branch:            p.Branch,
		SessionID:         p.SessionID,
		PlanningSessionID: p.PlanningSessionID,
		WorktreePath:      p.WorktreePath,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.HasDependency() {
		id := p.DependsOnID
		dto.DependsOnID = &id
	}
	return dto
}

func toDTOs(plans []*core.Plan) []planDTO {
	out := make([]planDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, toDTO(p))
	}
	return out
}

// guardDTO is the wire shape for a core.Guard.
type guardDTO struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	BlockedBy *int64 `json:"blockedBy,omitempty"`
}

func toGuardDTO(g core.Guard) guardDTO {
	dto := guardDTO{Allowed: g.Allowed, Reason: g.Reason}
	if g.BlockedBy != nil {
		id := g.BlockedBy.ID
		dto.BlockedBy = &id
	}
	return dto
}
