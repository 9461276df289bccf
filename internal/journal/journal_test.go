package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJournal(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir() + "/journal.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJournal_RunRoundTrip(t *testing.T) {
	s := setupTestJournal(t)
	ctx := context.Background()

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(3 * time.Second)

	require.NoError(t, s.BeginRun(ctx, "run-1", "initialize", started))
	require.NoError(t, s.RecordOutcome(ctx, "run-1", 1, "jane.doe", "created", "work item 42"))
	require.NoError(t, s.RecordOutcome(ctx, "run-1", 2, "mark.smith", "skipped", "empty identifier"))
	require.NoError(t, s.FinishRun(ctx, "run-1", finished, "ok", 1, 1, 0))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.Token)
	assert.Equal(t, "initialize", run.Pass)
	assert.Equal(t, started, run.StartedAt)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, finished, *run.FinishedAt)
	assert.Equal(t, "ok", run.Outcome)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 0, run.Failed)

	records, err := s.RunRecords(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "jane.doe", records[0].Key)
	assert.Equal(t, "created", records[0].Outcome)
	assert.Equal(t, "mark.smith", records[1].Key)
}

func TestJournal_RecentRunsNewestFirst(t *testing.T) {
	s := setupTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.BeginRun(ctx, "run-old", "initialize", base))
	require.NoError(t, s.BeginRun(ctx, "run-new", "accounts", base.Add(time.Minute)))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].Token)
	assert.Equal(t, "run-old", runs[1].Token)

	limited, err := s.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-new", limited[0].Token)
}

func TestJournal_BeginRunIsIdempotent(t *testing.T) {
	s := setupTestJournal(t)
	ctx := context.Background()

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.BeginRun(ctx, "run-1", "initialize", started))
	require.NoError(t, s.BeginRun(ctx, "run-1", "initialize", started))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestJournal_UnfinishedRunHasNoOutcome(t *testing.T) {
	s := setupTestJournal(t)
	ctx := context.Background()

	require.NoError(t, s.BeginRun(ctx, "run-1", "accounts", time.Now()))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Empty(t, runs[0].Outcome)
}

func TestJournal_OpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir + "/journal.db")
	require.NoError(t, err)
	require.NoError(t, s1.BeginRun(context.Background(), "run-1", "initialize", time.Now()))
	require.NoError(t, s1.Close())

	s2, err := Open(dir + "/journal.db")
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
