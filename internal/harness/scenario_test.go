package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScenarioValid(t *testing.T) {
	path := writeScenario(t, `
name: sample
description: a minimal valid scenario
documents:
  - id: jane.doe
passes:
  - initialize
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "sample", scenario.Name)
	require.Len(t, scenario.Documents, 1)
	assert.Equal(t, "jane.doe", scenario.Documents[0].ID)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: sample
description: typo below
pases:
  - initialize
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing name",
			content: `
description: no name
passes: [initialize]
`,
			want: "name is required",
		},
		{
			name: "missing description",
			content: `
name: sample
passes: [initialize]
`,
			want: "description is required",
		},
		{
			name: "missing passes",
			content: `
name: sample
description: no passes
`,
			want: "passes list is required",
		},
		{
			name: "unknown pass",
			content: `
name: sample
description: bad pass
passes: [garbage-collect]
`,
			want: "unknown pass",
		},
		{
			name: "document without id",
			content: `
name: sample
description: bad doc
documents:
  - firstname: Jane
passes: [initialize]
`,
			want: "documents[0]: id is required",
		},
		{
			name: "work item without status",
			content: `
name: sample
description: bad item
work_items:
  - id: 1
passes: [accounts]
`,
			want: "work_items[0]: status is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
