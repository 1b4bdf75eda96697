package cmd

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avery-ling/task-tracker/internal/core"
)

// withTempDataDir points dataDir at a fresh temp directory for the
// duration of one test and restores it afterward.
func withTempDataDir(t *testing.T) {
	t.Helper()
	old := dataDir
	dataDir = t.TempDir()
	t.Cleanup(func() { dataDir = old })
}

func TestCreateAndList(t *testing.T) {
	withTempDataDir(t)

	createProjectPath = "/tmp/proj"
	createDescription = "do the thing"
	createDependsOn = 0
	err := runCreate(createCmd, []string{"first plan"})
	require.NoError(t, err)

	d, err := newDeps()
	require.NoError(t, err)
	defer d.Store.Close()

	plans, err := d.Store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "first plan", plans[0].Title)
	assert.Equal(t, core.StatusOpen, plans[0].Status)
}

func TestRunStatus_RejectsIllegalTransition(t *testing.T) {
	withTempDataDir(t)

	createProjectPath = "/tmp/proj"
	createDescription = ""
	createDependsOn = 0
	require.NoError(t, runCreate(createCmd, []string{"plan"}))

	d, err := newDeps()
	require.NoError(t, err)
	plans, err := d.Store.List(context.Background())
	require.NoError(t, err)
	id := plans[0].ID
	d.Store.Close()

	// open -> completed is not a legal direct edge.
	err = runStatus(statusCmd, []string{itoa(id), "completed"})
	assert.Error(t, err)
}

func TestRunStatus_AllowsLegalTransition(t *testing.T) {
	withTempDataDir(t)

	createProjectPath = "/tmp/proj"
	createDescription = ""
	createDependsOn = 0
	require.NoError(t, runCreate(createCmd, []string{"plan"}))

	d, err := newDeps()
	require.NoError(t, err)
	plans, err := d.Store.List(context.Background())
	require.NoError(t, err)
	id := plans[0].ID
	d.Store.Close()

	err = runStatus(statusCmd, []string{itoa(id), "in-progress"})
	require.NoError(t, err)

	d2, err := newDeps()
	require.NoError(t, err)
	defer d2.Store.Close()
	plan, err := d2.Store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusInProgress, plan.Status)
}

func TestRunSetAndClearDependency(t *testing.T) {
	withTempDataDir(t)

	createProjectPath = "/tmp/proj"
	createDescription = ""
	createDependsOn = 0
	require.NoError(t, runCreate(createCmd, []string{"a"}))
	require.NoError(t, runCreate(createCmd, []string{"b"}))

	d, err := newDeps()
	require.NoError(t, err)
	plans, err := d.Store.List(context.Background())
	require.NoError(t, err)
	d.Store.Close()
	require.Len(t, plans, 2)

	var aID, bID int64
	for _, p := range plans {
		switch p.Title {
		case "a":
			aID = p.ID
		case "b":
			bID = p.ID
		}
	}

	require.NoError(t, runSetDependency(setDependencyCmd, []string{itoa(bID), itoa(aID)}))

	d2, err := newDeps()
	require.NoError(t, err)
	b, err := d2.Store.Get(context.Background(), bID)
	require.NoError(t, err)
	d2.Store.Close()
	assert.Equal(t, aID, b.DependsOnID)

	require.NoError(t, runClearDependency(clearDependencyCmd, []string{itoa(bID)}))

	d3, err := newDeps()
	require.NoError(t, err)
	defer d3.Store.Close()
	b2, err := d3.Store.Get(context.Background(), bID)
	require.NoError(t, err)
	assert.False(t, b2.HasDependency())
}

func TestConfigGetSet(t *testing.T) {
	withTempDataDir(t)

	require.NoError(t, runConfig(configCmd, []string{"maxReviewRounds", "7"}))
	require.NoError(t, runConfig(configCmd, []string{"maxReviewRounds"}))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
