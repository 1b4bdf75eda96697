package usage

import (
	"testing"

	"github.com/avery-ling/task-tracker/internal/config"
)

func TestCurrentSnapshot_DefaultsDisabled(t *testing.T) {
	snap := CurrentSnapshot(config.Default())
	if snap.Enabled {
		t.Error("default config should report usage limits disabled")
	}
	if snap.RequestsPerMinute != 50 {
		t.Errorf("RequestsPerMinute = %d, want the tier-1 default of 50", snap.RequestsPerMinute)
	}
}

func TestCurrentSnapshot_HonorsTier(t *testing.T) {
	cfg := config.Default()
	cfg.UsageLimits.OrganizationTier = 3
	snap := CurrentSnapshot(cfg)
	if snap.RequestsPerMinute != 400 {
		t.Errorf("RequestsPerMinute = %d, want 400 for tier 3", snap.RequestsPerMinute)
	}
}
