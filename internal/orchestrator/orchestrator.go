// Package orchestrator wires the per-plan "work" operation together:
// the can_start guard, worktree preparation, branch creation, and the
// worker/reviewer dialogue — the single sequence both the CLI's `work`
// command and the dashboard's `POST /api/plans/:id/work` endpoint drive.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avery-ling/task-tracker/internal/agent"
	"github.com/avery-ling/task-tracker/internal/childtable"
	"github.com/avery-ling/task-tracker/internal/config"
	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/fsutil"
	"github.com/avery-ling/task-tracker/internal/logging"
	"github.com/avery-ling/task-tracker/internal/naming"
	"github.com/avery-ling/task-tracker/internal/review"
	"github.com/avery-ling/task-tracker/internal/statemachine"
	"github.com/avery-ling/task-tracker/internal/store"
	"github.com/avery-ling/task-tracker/internal/vcs"
	"github.com/avery-ling/task-tracker/internal/worktree"
)

// PlanStore is the subset of *store.Store the orchestrator depends on.
type PlanStore interface {
	Get(ctx context.Context, id int64) (*core.Plan, error)
	GetDependency(ctx context.Context, id int64) (*core.Plan, error)
	UpdateBranch(ctx context.Context, id int64, branch string) error
	UpdateWorktreePath(ctx context.Context, id int64, path string) error
	UpdateStatus(ctx context.Context, id int64, status core.Status) error
	UpdateSession(ctx context.Context, id int64, sessionID string) error
}

// AgentRunner is the subset of *agent.Runner the orchestrator depends on.
type AgentRunner interface {
	Run(ctx context.Context, opts agent.RunOptions) (agent.Result, error)
}

// Orchestrator holds everything a plan's run needs to prepare a working
// directory and drive the review loop.
type Orchestrator struct {
	Store     PlanStore
	Worktrees *worktree.Manager
	Runner    AgentRunner
	Children  *childtable.Table
	Config    *config.Config
	LogsDir   string
	Logger    *logging.Logger
}

// New returns an Orchestrator backed by the given store and agent binary.
func New(db *store.Store, worktrees *worktree.Manager, runner AgentRunner, children *childtable.Table, cfg *config.Config, logsDir string, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		Store:     db,
		Worktrees: worktrees,
		Runner:    runner,
		Children:  children,
		Config:    cfg,
		LogsDir:   logsDir,
		Logger:    logger,
	}
}

// CanStart resolves can_start(id), looking up the predecessor if any.
func (o *Orchestrator) CanStart(ctx context.Context, plan *core.Plan) (core.Guard, error) {
	if !plan.HasDependency() {
		return core.Allow(), nil
	}
	predecessor, err := o.Store.GetDependency(ctx, plan.ID)
	if err != nil {
		return core.Guard{}, err
	}
	return statemachine.CanStart(plan, predecessor), nil
}

// RunPlan prepares plan's working directory (worktree + branch, when
// enabled) and drives the worker/reviewer loop to completion or to
// max_rounds. The plan lands in in-progress as soon as the working
// directory is ready, and in-review once the loop returns successfully.
func (o *Orchestrator) RunPlan(ctx context.Context, planID int64) (review.Outcome, error) {
	plan, err := o.Store.Get(ctx, planID)
	if err != nil {
		return review.Outcome{}, err
	}

	guard, err := o.CanStart(ctx, plan)
	if err != nil {
		return review.Outcome{}, err
	}
	if !guard.Allowed {
		return review.Outcome{}, core.ErrState(core.CodeInvalidStatus, guard.Reason)
	}

	repo, err := vcs.NewRepo(plan.ProjectPath)
	if err != nil {
		return review.Outcome{}, core.ErrIO("open repository", err)
	}

	branch := naming.BranchName(plan.ID, plan.Title)
	workDir := plan.ProjectPath

	if o.Config.Worktree.Enabled && o.Worktrees.Supported(ctx) {
		path, err := o.Worktrees.Create(ctx, repo, plan.ProjectPath, branch, plan.ID, o.Config.Worktree.CopyGitignored)
		if err != nil {
			return review.Outcome{}, err
		}
		workDir = path
		if err := o.Store.UpdateWorktreePath(ctx, plan.ID, path); err != nil {
			return review.Outcome{}, err
		}
	} else if !repo.BranchExists(ctx, branch) {
		if res := repo.CreateBranch(ctx, branch, "main"); !res.OK {
			return review.Outcome{}, core.ErrVCS("branch", res.Stderr)
		}
		if res := repo.Checkout(ctx, branch); !res.OK {
			return review.Outcome{}, core.ErrVCS("checkout", res.Stderr)
		}
	}

	if err := o.Store.UpdateBranch(ctx, plan.ID, branch); err != nil {
		return review.Outcome{}, err
	}
	if err := o.Store.UpdateStatus(ctx, plan.ID, core.StatusInProgress); err != nil {
		return review.Outcome{}, err
	}

	planContent, err := readPlanContent(plan.PlanPath)
	if err != nil {
		return review.Outcome{}, err
	}

	if err := os.MkdirAll(o.LogsDir, 0o750); err != nil {
		return review.Outcome{}, core.ErrIO("create logs directory", err)
	}
	logPath := filepath.Join(o.LogsDir, naming.LogFileName(plan.ID, time.Now()))

	loop := review.NewLoop(o.Runner, workDirRepo{repo, workDir}, o.Store)
	outcome, err := loop.Run(ctx, review.Options{
		Plan:            plan,
		PlanContent:     planContent,
		WorkDir:         workDir,
		LogPath:         logPath,
		MaxRounds:       o.Config.MaxReviewRounds,
		SkipPermissions: o.Config.SkipPermissions,
	})

	o.Logger.WithPlan(plan.ID).Info("orchestrator: plan run finished",
		"rounds", outcome.Rounds, "verdict", outcome.FinalVerdict, "err", err)

	return outcome, err
}

func readPlanContent(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := fsutil.ReadFileScoped(path)
	if err != nil {
		return "", core.ErrIO("read plan file", err)
	}
	return string(data), nil
}

// workDirRepo adapts a *vcs.Repo (rooted at a project) to review.DiffRanger
// scoped to a plan's worktree, since DiffRange must run against the
// directory the worker actually wrote to.
type workDirRepo struct {
	repo    *vcs.Repo
	workDir string
}

func (w workDirRepo) DiffRange(ctx context.Context, rangeSpec string) vcs.Result {
	scoped, err := vcs.NewRepo(w.workDir)
	if err != nil {
		return vcs.Result{OK: false, Stderr: fmt.Sprintf("open worktree repo: %v", err)}
	}
	return scoped.DiffRange(ctx, rangeSpec)
}
