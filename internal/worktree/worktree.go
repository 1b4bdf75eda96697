// Package worktree implements WorktreeManager (C3): per-plan isolated
// filesystem checkouts so parallel plans across projects never share a
// working directory, and serial plans within a project don't trample each
// other between invocations.
package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/vcs"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Manager creates, locates, and removes per-plan worktrees under Base.
type Manager struct {
	Base string
}

// NewManager returns a Manager rooted at base, defaulting to
// <home>/.task-tracker/worktrees when base is empty.
func NewManager(base string) (*Manager, error) {
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, core.ErrIO("resolve home directory", err)
		}
		base = filepath.Join(home, ".task-tracker", "worktrees")
	}
	return &Manager{Base: base}, nil
}

// ProjectSlug derives the project-slug path component: the last two path
// components of the project's absolute path, joined with "-", with every
// non-alphanumeric character replaced by "-".
func ProjectSlug(projectPath string) string {
	clean := filepath.Clean(projectPath)
	parts := strings.Split(clean, string(filepath.Separator))
	var tail []string
	for i := len(parts) - 1; i >= 0 && len(tail) < 2; i-- {
		if parts[i] == "" {
			continue
		}
		tail = append([]string{parts[i]}, tail...)
	}
	joined := strings.Join(tail, "-")
	return nonAlphanumeric.ReplaceAllString(joined, "-")
}

// Path returns the derived worktree path for a plan:
// <base>/<project-slug>/<plan-id>.
func (m *Manager) Path(projectPath string, planID int64) string {
	return filepath.Join(m.Base, ProjectSlug(projectPath), fmt.Sprintf("%d", planID))
}

// Supported checks that the host git supports out-of-tree working copies.
func (m *Manager) Supported(ctx context.Context) bool {
	return vcs.SupportsWorktrees(ctx)
}

// Exists reports whether the expected directory exists and contains git
// worktree metadata.
func (m *Manager) Exists(projectPath string, planID int64) bool {
	path := m.Path(projectPath, planID)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Create ensures branch exists (creating it from "main" if absent),
// creates the worktree at the derived path if it doesn't already exist,
// and copies gitignored config files the agent would otherwise lack.
// Re-invoking on an existing worktree is a no-op.
func (m *Manager) Create(ctx context.Context, repo *vcs.Repo, projectPath, branch string, planID int64, copyGitignored bool) (string, error) {
	if m.Exists(projectPath, planID) {
		return m.Path(projectPath, planID), nil
	}

	if !repo.BranchExists(ctx, branch) {
		if res := repo.CreateBranch(ctx, branch, "main"); !res.OK {
			return "", core.ErrVCS("branch", res.Stderr)
		}
	}

	path := m.Path(projectPath, planID)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", core.ErrIO("create worktree parent directory", err)
	}
	if res := repo.WorktreeAdd(ctx, path, branch); !res.OK {
		return "", core.ErrVCS("worktree add", res.Stderr)
	}

	if copyGitignored {
		if err := CopyGitignored(projectPath, path); err != nil {
			return path, core.ErrIO("copy gitignored files", err)
		}
	}

	return path, nil
}

// Remove force-removes the worktree and prunes stale administrative
// entries.
func (m *Manager) Remove(ctx context.Context, repo *vcs.Repo, projectPath string, planID int64) error {
	path := m.Path(projectPath, planID)
	if res := repo.WorktreeRemove(ctx, path); !res.OK {
		// Fall back to a manual directory removal if git no longer tracks it.
		if err := os.RemoveAll(path); err != nil {
			return core.ErrVCS("worktree remove", res.Stderr)
		}
	}
	repo.WorktreePrune(ctx)
	return nil
}

// OrphanEntry identifies a worktree on disk whose (project-slug, plan-id)
// pair has no matching plan in the Store.
type OrphanEntry struct {
	ProjectSlug string
	PlanID      string
	Path        string
}

// ScanOrphans enumerates worktrees under Base and reports any whose
// (project_slug, plan_id) pair is not present in liveIDs, keyed by
// "<project-slug>/<plan-id>".
func (m *Manager) ScanOrphans(liveIDs map[string]bool) ([]OrphanEntry, error) {
	var orphans []OrphanEntry

	slugDirs, err := os.ReadDir(m.Base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.ErrIO("scan worktree base", err)
	}

	for _, slugDir := range slugDirs {
		if !slugDir.IsDir() {
			continue
		}
		slugPath := filepath.Join(m.Base, slugDir.Name())
		planDirs, err := os.ReadDir(slugPath)
		if err != nil {
			continue
		}
		for _, planDir := range planDirs {
			if !planDir.IsDir() {
				continue
			}
			key := slugDir.Name() + "/" + planDir.Name()
			if liveIDs[key] {
				continue
			}
			orphans = append(orphans, OrphanEntry{
				ProjectSlug: slugDir.Name(),
				PlanID:      planDir.Name(),
				Path:        filepath.Join(slugPath, planDir.Name()),
			})
		}
	}
	return orphans, nil
}
