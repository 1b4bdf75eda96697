// Package review implements the bounded worker/reviewer dialogue (C6)
// that drives a plan from in-progress to in-review.
package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/avery-ling/task-tracker/internal/agent"
	"github.com/avery-ling/task-tracker/internal/core"
	"github.com/avery-ling/task-tracker/internal/vcs"
)

// DefaultMaxRounds is used when configuration does not override it.
const DefaultMaxRounds = 5

// PlanStore is the subset of store.Store the loop needs to persist the
// session id it assigns and the plan's eventual status.
type PlanStore interface {
	UpdateSession(ctx context.Context, id int64, sessionID string) error
	UpdateStatus(ctx context.Context, id int64, status core.Status) error
}

// AgentRunner is the subset of agent.Runner the loop depends on, narrowed
// to an interface so the dialogue can be tested without spawning a real
// subprocess.
type AgentRunner interface {
	Run(ctx context.Context, opts agent.RunOptions) (agent.Result, error)
}

// DiffRanger is the subset of vcs.Repo the loop depends on.
type DiffRanger interface {
	DiffRange(ctx context.Context, rangeSpec string) vcs.Result
}

// Options configures one run of the loop for a single plan.
type Options struct {
	Plan            *core.Plan
	PlanContent     string
	WorkDir         string
	LogPath         string
	MaxRounds       int
	SkipPermissions bool
}

// Outcome summarizes how the loop ended.
type Outcome struct {
	Rounds           int
	FinalVerdict     Verdict
	AdvancedToReview bool
}

// Loop drives the worker/reviewer dialogue for one plan.
type Loop struct {
	Runner AgentRunner
	Repo   DiffRanger
	Store  PlanStore
}

// NewLoop constructs a Loop over the given collaborators.
func NewLoop(runner AgentRunner, repo DiffRanger, store PlanStore) *Loop {
	return &Loop{Runner: runner, Repo: repo, Store: store}
}

// Run executes the algorithm from the specification: one initial worker
// invocation, then up to maxRounds review/revise rounds, converging on an
// APPROVE verdict or exhausting the round budget. The plan transitions to
// in-review whenever the initial worker invocation succeeds, regardless
// of whether the loop converges before the round budget runs out — an
// exhausted budget hands the result to a human reviewer rather than
// leaving it stuck in-progress.
func (l *Loop) Run(ctx context.Context, opts Options) (Outcome, error) {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	sessionID := uuid.NewString()
	if err := l.Store.UpdateSession(ctx, opts.Plan.ID, sessionID); err != nil {
		return Outcome{}, err
	}

	_, err := l.Runner.Run(ctx, agent.RunOptions{
		PlanID:          opts.Plan.ID,
		Role:            agent.RoleWorker,
		Prompt:          WorkerPrompt(opts.PlanContent),
		SessionID:       sessionID,
		Resume:          false,
		WorkDir:         opts.WorkDir,
		LogPath:         opts.LogPath,
		SkipPermissions: opts.SkipPermissions,
	})
	if err != nil {
		// Initial worker failed: plan stays in-progress for the caller to
		// inspect logs and retry.
		return Outcome{}, err
	}

	outcome := Outcome{AdvancedToReview: true}

	for round := 1; round <= maxRounds; round++ {
		outcome.Rounds = round

		diffRes := l.Repo.DiffRange(ctx, "main...HEAD")
		if !diffRes.OK {
			return outcome, core.ErrVCS("diff", diffRes.Stderr)
		}
		if diffRes.Stdout == "" {
			break
		}

		reviewSessionID := uuid.NewString()
		reviewResult, err := l.Runner.Run(ctx, agent.RunOptions{
			PlanID:          opts.Plan.ID,
			Role:            agent.RoleReviewer,
			Prompt:          ReviewPrompt(opts.PlanContent, diffRes.Stdout),
			SessionID:       reviewSessionID,
			Resume:          false,
			WorkDir:         opts.WorkDir,
			LogPath:         opts.LogPath,
			SkipPermissions: opts.SkipPermissions,
		})
		if err != nil {
			// Reviewer failure is inconclusive: stop, but the plan still
			// advances to in-review since the initial worker succeeded.
			break
		}

		verdict, feedback := ParseVerdict(reviewResult.Transcript)
		outcome.FinalVerdict = verdict
		if verdict == VerdictApprove {
			break
		}

		_, err = l.Runner.Run(ctx, agent.RunOptions{
			PlanID:          opts.Plan.ID,
			Role:            agent.RoleWorker,
			Prompt:          RevisionPrompt(feedback),
			SessionID:       sessionID,
			Resume:          true,
			WorkDir:         opts.WorkDir,
			LogPath:         opts.LogPath,
			SkipPermissions: opts.SkipPermissions,
		})
		if err != nil {
			break
		}
	}

	if err := l.Store.UpdateStatus(ctx, opts.Plan.ID, core.StatusInReview); err != nil {
		return outcome, err
	}
	return outcome, nil
}
