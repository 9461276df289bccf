// Package config loads the TOML configuration file that names the three
// collaborator services and the journal location.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/rawdlite/onboardsync/internal/record"
	"github.com/rawdlite/onboardsync/internal/tracker"
)

// Config is the full configuration file.
type Config struct {
	CouchDB   CouchDBConfig   `toml:"couchdb"`
	Tracker   TrackerConfig   `toml:"tracker"`
	Directory DirectoryConfig `toml:"directory"`
	Journal   JournalConfig   `toml:"journal"`
}

// CouchDBConfig names the document-store database.
type CouchDBConfig struct {
	URL      string `toml:"url"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// TrackerConfig names the workflow-tracker project. Fields and Statuses
// override the instance-specific custom-field keys and status ids.
type TrackerConfig struct {
	URL       string         `toml:"url"`
	APIKey    string         `toml:"apikey"`
	ProjectID int            `toml:"project_id"`
	PageSize  int            `toml:"page_size"`
	Fields    FieldsConfig   `toml:"fields"`
	Statuses  map[string]int `toml:"statuses"`
}

// FieldsConfig maps identity fields to tracker custom-field keys.
// Empty entries keep the stock mapping.
type FieldsConfig struct {
	FirstName      string `toml:"firstname"`
	LastName       string `toml:"lastname"`
	Username       string `toml:"username"`
	Email          string `toml:"email"`
	Telephone      string `toml:"telephone"`
	Git            string `toml:"git"`
	PublicKey      string `toml:"public_key"`
	WantsDirectory string `toml:"wants_directory"`
	WantsTracker   string `toml:"wants_tracker"`
}

// DirectoryConfig names the directory service.
type DirectoryConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// JournalConfig names the pass journal database file.
type JournalConfig struct {
	Path string `toml:"path"`
}

// DefaultPath returns the conventional configuration file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "onboardsync", "config.toml")
}

// Load reads and validates a configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every collaborator is fully named.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.CouchDB.URL) == "" {
		return fmt.Errorf("couchdb config missing url")
	}
	if strings.TrimSpace(cfg.CouchDB.Database) == "" {
		return fmt.Errorf("couchdb config missing database")
	}
	if strings.TrimSpace(cfg.Tracker.URL) == "" {
		return fmt.Errorf("tracker config missing url")
	}
	if strings.TrimSpace(cfg.Tracker.APIKey) == "" {
		return fmt.Errorf("tracker config missing apikey")
	}
	if cfg.Tracker.ProjectID <= 0 {
		return fmt.Errorf("tracker config missing project_id")
	}
	if strings.TrimSpace(cfg.Directory.URL) == "" {
		return fmt.Errorf("directory config missing url")
	}
	for name := range cfg.Tracker.Statuses {
		if !record.Status(name).Known() {
			return fmt.Errorf("tracker config names unknown status %q", name)
		}
	}
	return nil
}

// FieldMapping merges the configured custom-field keys over the stock
// mapping.
func (c TrackerConfig) FieldMapping() tracker.FieldMapping {
	fm := tracker.DefaultFieldMapping()
	if c.Fields.FirstName != "" {
		fm.FirstName = c.Fields.FirstName
	}
	if c.Fields.LastName != "" {
		fm.LastName = c.Fields.LastName
	}
	if c.Fields.Username != "" {
		fm.Username = c.Fields.Username
	}
	if c.Fields.Email != "" {
		fm.Email = c.Fields.Email
	}
	if c.Fields.Telephone != "" {
		fm.Telephone = c.Fields.Telephone
	}
	if c.Fields.Git != "" {
		fm.Git = c.Fields.Git
	}
	if c.Fields.PublicKey != "" {
		fm.PublicKey = c.Fields.PublicKey
	}
	if c.Fields.WantsDirectory != "" {
		fm.WantsDirectory = c.Fields.WantsDirectory
	}
	if c.Fields.WantsTracker != "" {
		fm.WantsTracker = c.Fields.WantsTracker
	}
	return fm
}

// StatusTable merges the configured status ids over the stock table.
func (c TrackerConfig) StatusTable() record.StatusTable {
	table := record.DefaultStatusTable()
	for name, id := range c.Statuses {
		table[record.Status(name)] = id
	}
	return table
}

// JournalPath returns the configured journal file, defaulting next to
// the configuration directory.
func (c Config) JournalPath() string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(filepath.Dir(DefaultPath()), "journal.db")
}
