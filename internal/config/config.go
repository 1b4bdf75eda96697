// Package config loads and persists the single JSON preferences document
// described in the external interfaces: skip-permissions, the review-round
// cap, usage-limit gating for the scheduler's quota pre-flight, and
// worktree behavior.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/avery-ling/task-tracker/internal/core"
)

// UsageLimits gates the scheduler's optional quota pre-flight.
type UsageLimits struct {
	Enabled               bool    `json:"enabled"`
	MinAvailableInputTokens int   `json:"minAvailableInputTokens"`
	MinAvailableRequests  int     `json:"minAvailableRequests"`
	MaxCostPerSession     float64 `json:"maxCostPerSession"`
	MaxWaitMinutes        int     `json:"maxWaitMinutes"`
	OrganizationTier      int     `json:"organizationTier,omitempty"`
}

// Worktree controls whether and how plans get isolated filesystem checkouts.
type Worktree struct {
	Enabled               bool `json:"enabled"`
	CopyGitignored        bool `json:"copyGitignored"`
	AutoCleanupOnComplete bool `json:"autoCleanupOnComplete"`
}

// Config is the single JSON document described in the external interfaces.
type Config struct {
	SkipPermissions bool        `json:"skipPermissions"`
	MaxReviewRounds int         `json:"maxReviewRounds"`
	UsageLimits     UsageLimits `json:"usageLimits"`
	Worktree        Worktree    `json:"worktree"`
}

// Default returns the configuration with every field at its documented
// default value.
func Default() *Config {
	return &Config{
		SkipPermissions: false,
		MaxReviewRounds: 5,
		UsageLimits: UsageLimits{
			Enabled:                 false,
			MinAvailableInputTokens: 10000,
			MinAvailableRequests:    5,
			MaxCostPerSession:       1.0,
			MaxWaitMinutes:          10,
		},
		Worktree: Worktree{
			Enabled:               true,
			CopyGitignored:        true,
			AutoCleanupOnComplete: false,
		},
	}
}

// DataDir returns the XDG-convention data directory that holds the
// database, config file, and log directory.
func DataDir() (string, error) {
	if dir := os.Getenv("TRACKER_DATA_DIR"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "task-tracker"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", core.ErrIO("resolve home directory", err)
	}
	return filepath.Join(home, ".local", "share", "task-tracker"), nil
}

// Path returns the path to the config.json file under the data dir.
func Path() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file at path, applies the env-var overlay, and
// falls back to defaults on any read or parse failure — ConfigError is by
// design invisible to the user (§7).
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return applyEnvOverlay(cfg)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return applyEnvOverlay(Default())
	}
	return applyEnvOverlay(cfg)
}

// Save writes cfg to path atomically via renameio, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return core.ErrIO("create config directory", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return core.ErrIO("marshal config", err)
	}
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return core.ErrIO("write config", err)
	}
	return nil
}

// Get returns the value at a dotted key path (e.g. "usageLimits.enabled")
// for the `tracker config <key>` command.
func (c *Config) Get(key string) (interface{}, bool) {
	switch key {
	case "skipPermissions":
		return c.SkipPermissions, true
	case "maxReviewRounds":
		return c.MaxReviewRounds, true
	case "usageLimits.enabled":
		return c.UsageLimits.Enabled, true
	case "usageLimits.minAvailableInputTokens":
		return c.UsageLimits.MinAvailableInputTokens, true
	case "usageLimits.minAvailableRequests":
		return c.UsageLimits.MinAvailableRequests, true
	case "usageLimits.maxCostPerSession":
		return c.UsageLimits.MaxCostPerSession, true
	case "usageLimits.maxWaitMinutes":
		return c.UsageLimits.MaxWaitMinutes, true
	case "usageLimits.organizationTier":
		return c.UsageLimits.OrganizationTier, true
	case "worktree.enabled":
		return c.Worktree.Enabled, true
	case "worktree.copyGitignored":
		return c.Worktree.CopyGitignored, true
	case "worktree.autoCleanupOnComplete":
		return c.Worktree.AutoCleanupOnComplete, true
	default:
		return nil, false
	}
}

// Set assigns a string value at a dotted key path, parsing it to the
// field's type, for the `tracker config <key> <value>` command.
func (c *Config) Set(key, value string) error {
	switch key {
	case "skipPermissions":
		return setBool(&c.SkipPermissions, value)
	case "maxReviewRounds":
		return setInt(&c.MaxReviewRounds, value)
	case "usageLimits.enabled":
		return setBool(&c.UsageLimits.Enabled, value)
	case "usageLimits.minAvailableInputTokens":
		return setInt(&c.UsageLimits.MinAvailableInputTokens, value)
	case "usageLimits.minAvailableRequests":
		return setInt(&c.UsageLimits.MinAvailableRequests, value)
	case "usageLimits.maxCostPerSession":
		return setFloat(&c.UsageLimits.MaxCostPerSession, value)
	case "usageLimits.maxWaitMinutes":
		return setInt(&c.UsageLimits.MaxWaitMinutes, value)
	case "usageLimits.organizationTier":
		return setInt(&c.UsageLimits.OrganizationTier, value)
	case "worktree.enabled":
		return setBool(&c.Worktree.Enabled, value)
	case "worktree.copyGitignored":
		return setBool(&c.Worktree.CopyGitignored, value)
	case "worktree.autoCleanupOnComplete":
		return setBool(&c.Worktree.AutoCleanupOnComplete, value)
	default:
		return core.ErrValidation(core.CodeInvalidConfig, "unknown config key: "+key)
	}
}
