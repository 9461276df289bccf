package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

func TestScenariosAgainstGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario fixtures found")

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, "loading %s", path)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRunSeedsFixtures(t *testing.T) {
	scenario := &Scenario{
		Name:        "seeding",
		Description: "fixtures land in the fakes",
		Documents: []DocumentFixture{
			{ID: "jane.doe", Username: "jdoe", WorkflowID: 4},
		},
		WorkItems: []WorkItemFixture{
			{ID: 4, Subject: "jane.doe", Status: "In progress"},
		},
		DirectoryAccounts: []AccountFixture{
			{ID: "jdoe", Enabled: true},
		},
		TrackerUsers: []AccountFixture{
			{ID: "jdoe", Enabled: true},
		},
		Passes: []string{"consolidate-tracker-to-document"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "consolidate-tracker-to-document", result.Reports[0].Pass)

	p := result.Docs.Stored("jane.doe")
	require.NotNil(t, p)
	require.True(t, p.Linked())
	assert.Equal(t, 4, p.Workflow.ID)
	assert.Equal(t, record.StatusInProgress, result.Tracker.Item(4).Status)
}

func TestRunAllExpandsToPipeline(t *testing.T) {
	scenario := &Scenario{
		Name:        "pipeline",
		Description: "all runs every pass",
		Passes:      []string{"all"},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Reports, 5)
	assert.Equal(t, "initialize", result.Reports[0].Pass)
	assert.Equal(t, "refresh-accounts", result.Reports[4].Pass)
	for _, r := range result.Reports {
		assert.Equal(t, "ok", r.Outcome())
	}
}

func TestRunIsDeterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "deterministic",
		Description: "tokens and clocks are stubbed",
		Documents: []DocumentFixture{
			{ID: "jane.doe", FirstName: "Jane", LastName: "Doe"},
		},
		Passes: []string{"initialize", "initialize"},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, first.Reports, 2)
	assert.Equal(t, "run-1", first.Reports[0].Token)
	assert.Equal(t, "run-2", first.Reports[1].Token)
	assert.Equal(t, first.Reports[0].StartedAt, second.Reports[0].StartedAt)

	require.Len(t, first.Reports[0].Records, 1)
	assert.Equal(t, engine.OutcomeCreated, first.Reports[0].Records[0].Outcome)

	// Second initialize is a no-op: the person is already linked.
	assert.Empty(t, first.Reports[1].Records)
}
