// Package usage computes the quota snapshot behind /api/usage and the
// scheduler's optional pre-flight gate. No external billing or quota
// service is part of this system's external interfaces, so a Snapshot is
// derived entirely from the configured usageLimits rather than a live
// token count.
package usage

import "github.com/avery-ling/task-tracker/internal/config"

// tierRequestsPerMinute are the per-minute request ceilings selected by
// organizationTier (1..4); tier 0 ("auto") resolves to the lowest tier
// until a caller sets one explicitly.
var tierRequestsPerMinute = map[int]int{
	0: 50,
	1: 50,
	2: 100,
	3: 400,
	4: 1000,
}

// Snapshot is the current quota-limits view reported by /api/usage.
type Snapshot struct {
	Enabled                 bool    `json:"enabled"`
	MinAvailableInputTokens int     `json:"minAvailableInputTokens"`
	MinAvailableRequests    int     `json:"minAvailableRequests"`
	MaxCostPerSession       float64 `json:"maxCostPerSession"`
	MaxWaitMinutes          int     `json:"maxWaitMinutes"`
	OrganizationTier        int     `json:"organizationTier"`
	RequestsPerMinute       int     `json:"requestsPerMinute"`
}

// CurrentSnapshot reports the configured gates and the derived per-minute
// ceiling for the caller's organization tier.
func CurrentSnapshot(cfg *config.Config) Snapshot {
	limits := cfg.UsageLimits
	return Snapshot{
		Enabled:                 limits.Enabled,
		MinAvailableInputTokens: limits.MinAvailableInputTokens,
		MinAvailableRequests:    limits.MinAvailableRequests,
		MaxCostPerSession:       limits.MaxCostPerSession,
		MaxWaitMinutes:          limits.MaxWaitMinutes,
		OrganizationTier:        limits.OrganizationTier,
		RequestsPerMinute:       tierRequestsPerMinute[limits.OrganizationTier],
	}
}
