package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawdlite/onboardsync/internal/engine"
)

func sampleReports() []*engine.PassReport {
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []*engine.PassReport{
		{
			Pass:       "initialize",
			Token:      "tok-1",
			StartedAt:  started,
			FinishedAt: started.Add(250 * time.Millisecond),
			Records: []engine.RecordOutcome{
				{Key: "jane.doe", Outcome: engine.OutcomeCreated, Detail: "work item 3"},
				{Key: "max.muster", Outcome: engine.OutcomeUnchanged},
			},
		},
	}
}

func TestReportsTextOutput(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out}
	require.NoError(t, f.Reports(sampleReports()))

	assert.Contains(t, out.String(), "pass initialize: ok (2 processed, 0 skipped, 0 failed)")
	assert.Contains(t, out.String(), "created   jane.doe  (work item 3)")
	// Unchanged records only show up in verbose mode.
	assert.NotContains(t, out.String(), "max.muster")
}

func TestReportsVerboseTextIncludesUnchanged(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out, Verbose: true}
	require.NoError(t, f.Reports(sampleReports()))

	assert.Contains(t, out.String(), "max.muster")
}

func TestReportsJSONOutput(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out}
	require.NoError(t, f.Reports(sampleReports()))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestReportsJSONStatusReflectsAbort(t *testing.T) {
	reports := sampleReports()
	reports[0].Err = "store down"

	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out}
	require.NoError(t, f.Reports(reports))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestReportsErrorFoldsAbortIntoExitCode(t *testing.T) {
	reports := sampleReports()
	assert.NoError(t, reportsError(reports))

	reports[0].Err = "store down"
	err := reportsError(reports)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "initialize")
}
