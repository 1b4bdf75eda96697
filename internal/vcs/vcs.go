// Package vcs is a thin typed wrapper (C4) over the git CLI: checkout,
// branch, merge, status, diff, log, and worktree-list operations, all
// scoped to a working directory and none retried — failures are surfaced
// to the caller for policy.
package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Result is the (ok, stdout, stderr) triple every VCS operation returns.
type Result struct {
	OK     bool
	Stdout string
	Stderr string
}

// Repo is a git repository scoped to a single working directory.
type Repo struct {
	Dir     string
	gitPath string
	timeout time.Duration
}

// NewRepo returns a Repo rooted at dir. It resolves the git binary via
// PATH lookup; dir is not validated as a repository here, since some
// operations (CreateBranch on a fresh clone) legitimately run before HEAD
// exists.
func NewRepo(dir string) (*Repo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, err
	}
	return &Repo{Dir: absDir, gitPath: gitPath, timeout: 30 * time.Second}, nil
}

func (r *Repo) run(ctx context.Context, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return Result{
		OK:     err == nil,
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
}

// Checkout switches the working directory to branch.
func (r *Repo) Checkout(ctx context.Context, branch string) Result {
	return r.run(ctx, "checkout", branch)
}

// CreateBranch creates branch from base (typically "main") without
// switching to it in the current working directory when from is used with
// worktree add elsewhere; here it is a plain branch creation.
func (r *Repo) CreateBranch(ctx context.Context, branch, from string) Result {
	return r.run(ctx, "branch", branch, from)
}

// BranchExists reports whether branch exists locally.
func (r *Repo) BranchExists(ctx context.Context, branch string) bool {
	res := r.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return res.OK
}

// CurrentBranch returns the branch checked out in Dir.
func (r *Repo) CurrentBranch(ctx context.Context) Result {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// StatusPorcelain returns `git status --porcelain` output.
func (r *Repo) StatusPorcelain(ctx context.Context) Result {
	return r.run(ctx, "status", "--porcelain")
}

// DiffRange returns the diff between two refs, e.g. "main...HEAD", with a
// generous buffer for the reviewer prompt.
func (r *Repo) DiffRange(ctx context.Context, rangeSpec string) Result {
	return r.run(ctx, "diff", rangeSpec)
}

// Merge merges branch into the current HEAD without rebasing.
func (r *Repo) Merge(ctx context.Context, branch string) Result {
	return r.run(ctx, "merge", "--no-edit", branch)
}

// Fetch updates remote-tracking refs.
func (r *Repo) Fetch(ctx context.Context) Result {
	return r.run(ctx, "fetch")
}

// LogRange returns the one-line log for a commit range.
func (r *Repo) LogRange(ctx context.Context, rangeSpec string) Result {
	return r.run(ctx, "log", "--oneline", rangeSpec)
}

// BranchDelete force-deletes a local branch.
func (r *Repo) BranchDelete(ctx context.Context, branch string) Result {
	return r.run(ctx, "branch", "-D", branch)
}

// WorktreeAdd creates a worktree at path checked out at branch.
func (r *Repo) WorktreeAdd(ctx context.Context, path, branch string) Result {
	return r.run(ctx, "worktree", "add", path, branch)
}

// WorktreeRemove force-removes the worktree at path.
func (r *Repo) WorktreeRemove(ctx context.Context, path string) Result {
	return r.run(ctx, "worktree", "remove", "--force", path)
}

// WorktreePrune removes administrative files for worktrees whose
// directories were deleted manually.
func (r *Repo) WorktreePrune(ctx context.Context) Result {
	return r.run(ctx, "worktree", "prune")
}

// WorktreeEntry is one row of `git worktree list --porcelain`.
type WorktreeEntry struct {
	Path   string
	Branch string
	Head   string
}

// WorktreeList parses `git worktree list --porcelain` into path/branch/head
// triples.
func (r *Repo) WorktreeList(ctx context.Context) ([]WorktreeEntry, Result) {
	res := r.run(ctx, "worktree", "list", "--porcelain")
	if !res.OK {
		return nil, res
	}

	var entries []WorktreeEntry
	var current WorktreeEntry
	flush := func() {
		if current.Path != "" {
			entries = append(entries, current)
		}
		current = WorktreeEntry{}
	}

	for _, line := range strings.Split(res.Stdout, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(line, "branch ")
		case line == "":
			// blank line separates entries; flush happens on next "worktree "
		}
	}
	flush()

	return entries, res
}

// SupportsWorktrees checks that the host's git version supports the
// `worktree` subcommand (stable since git 2.5).
func SupportsWorktrees(ctx context.Context) bool {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return false
	}
	cmd := exec.CommandContext(ctx, gitPath, "worktree", "--help")
	return cmd.Run() == nil
}
