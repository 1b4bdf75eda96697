package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxReviewRounds != 5 {
		t.Errorf("MaxReviewRounds = %d, want 5", cfg.MaxReviewRounds)
	}
	if !cfg.Worktree.Enabled {
		t.Error("Worktree.Enabled should default to true")
	}
	if cfg.UsageLimits.Enabled {
		t.Error("UsageLimits.Enabled should default to false")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.SkipPermissions = true
	cfg.MaxReviewRounds = 3

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load(path)
	if !loaded.SkipPermissions {
		t.Error("expected SkipPermissions to round-trip as true")
	}
	if loaded.MaxReviewRounds != 3 {
		t.Errorf("MaxReviewRounds = %d, want 3", loaded.MaxReviewRounds)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.json"))
	if cfg.MaxReviewRounds != 5 {
		t.Error("missing config file should fall back to defaults")
	}
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Load(path)
	if cfg.MaxReviewRounds != 5 {
		t.Error("malformed config file should fall back to defaults")
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("maxReviewRounds", "7"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok := cfg.Get("maxReviewRounds")
	if !ok {
		t.Fatal("Get should recognize maxReviewRounds")
	}
	if v.(int) != 7 {
		t.Errorf("maxReviewRounds = %v, want 7", v)
	}

	if err := cfg.Set("worktree.enabled", "false"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, _ = cfg.Get("worktree.enabled")
	if v.(bool) {
		t.Error("worktree.enabled should be false after Set")
	}
}

func TestConfig_SetUnknownKey(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("nonexistent", "1"); err == nil {
		t.Error("expected error for unknown config key")
	}
}

func TestConfig_GetUnknownKey(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.Get("nonexistent"); ok {
		t.Error("expected ok=false for unknown config key")
	}
}
