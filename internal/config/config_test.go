package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawdlite/onboardsync/internal/record"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
[couchdb]
url = "http://couch:5984"
database = "people"
username = "admin"
password = "secret"

[tracker]
url = "http://tracker"
apikey = "s3cret"
project_id = 5
page_size = 50

[tracker.fields]
username = "customField12"

[tracker.statuses]
"Scheduled" = 16

[directory]
url = "http://cloud"
username = "admin"
password = "secret"

[journal]
path = "/var/lib/onboardsync/journal.db"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://couch:5984", cfg.CouchDB.URL)
	assert.Equal(t, "people", cfg.CouchDB.Database)
	assert.Equal(t, 5, cfg.Tracker.ProjectID)
	assert.Equal(t, 50, cfg.Tracker.PageSize)
	assert.Equal(t, "http://cloud", cfg.Directory.URL)
	assert.Equal(t, "/var/lib/onboardsync/journal.db", cfg.JournalPath())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config load failed")
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "couchdb = [broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config parse failed")
}

func TestValidateFlagsMissingSections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"couch url", func(c *Config) { c.CouchDB.URL = "" }, "couchdb config missing url"},
		{"couch database", func(c *Config) { c.CouchDB.Database = "" }, "couchdb config missing database"},
		{"tracker url", func(c *Config) { c.Tracker.URL = "" }, "tracker config missing url"},
		{"tracker apikey", func(c *Config) { c.Tracker.APIKey = "" }, "tracker config missing apikey"},
		{"tracker project", func(c *Config) { c.Tracker.ProjectID = 0 }, "tracker config missing project_id"},
		{"directory url", func(c *Config) { c.Directory.URL = "" }, "directory config missing url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig))
			require.NoError(t, err)
			tc.mutate(&cfg)
			err = Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateRejectsUnknownStatusName(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	cfg.Tracker.Statuses["Bogus"] = 99
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestFieldMappingMergesOverDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	fm := cfg.Tracker.FieldMapping()
	assert.Equal(t, "customField12", fm.Username)
	assert.Equal(t, "customField1", fm.FirstName)
	assert.Equal(t, "customField9", fm.WantsTracker)
}

func TestStatusTableMergesOverDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	table := cfg.Tracker.StatusTable()
	id, ok := table.ID(record.StatusScheduled)
	require.True(t, ok)
	assert.Equal(t, 16, id)

	id, ok = table.ID(record.StatusNew)
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestJournalPathDefaultsNextToConfig(t *testing.T) {
	var cfg Config
	assert.Equal(t, filepath.Join(filepath.Dir(DefaultPath()), "journal.db"), cfg.JournalPath())
}
