package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"

	"github.com/avery-ling/task-tracker/internal/agent"
	"github.com/avery-ling/task-tracker/internal/childtable"
	"github.com/avery-ling/task-tracker/internal/config"
	"github.com/avery-ling/task-tracker/internal/logging"
	"github.com/avery-ling/task-tracker/internal/orchestrator"
	"github.com/avery-ling/task-tracker/internal/store"
	"github.com/avery-ling/task-tracker/internal/worktree"
)

// deps holds every collaborator a command needs, wired once per
// invocation from --data-dir / the persisted config file.
type deps struct {
	Store     *store.Store
	Config    *config.Config
	ConfigPath string
	Worktrees *worktree.Manager
	Children  *childtable.Table
	Runner    *agent.Runner
	Orch      *orchestrator.Orchestrator
	Logger    *logging.Logger
	LogsDir   string
	PlansDir  string
}

// newDeps resolves the data directory, opens the Store, loads config, and
// wires every collaborator the orchestrator needs. Callers must Close().
func newDeps() (*deps, error) {
	dir := dataDir
	if dir == "" {
		d, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.Load(cfgPath)

	logger := logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: os.Stderr,
	})

	db, err := store.Open(filepath.Join(dir, "plans.db"))
	if err != nil {
		return nil, err
	}

	worktrees, err := worktree.NewManager(filepath.Join(dir, "worktrees"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	children := childtable.New()
	runner := agent.NewRunner(agentBinary, children, logger)
	logsDir := filepath.Join(dir, "logs")
	plansDir := filepath.Join(dir, "plans")

	orch := orchestrator.New(db, worktrees, runner, children, cfg, logsDir, logger)

	return &deps{
		Store:      db,
		Config:     cfg,
		ConfigPath: cfgPath,
		Worktrees:  worktrees,
		Children:   children,
		Runner:     runner,
		Orch:       orch,
		Logger:     logger,
		LogsDir:    logsDir,
		PlansDir:   plansDir,
	}, nil
}

func (d *deps) Close() error {
	return d.Store.Close()
}

// parseID parses a CLI positional argument as a plan id.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid plan id %q", raw)
	}
	return id, nil
}

func printErr(err error) {
	if noColor {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
}

func printInfo(format string, args ...interface{}) {
	if quiet {
		return
	}
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}
