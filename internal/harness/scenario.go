// Package harness runs end-to-end reconciliation scenarios against the
// in-memory fakes. Scenarios are YAML fixtures naming the initial state
// of the three stores and the passes to run; the resulting reports and
// final state are compared against golden files.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one end-to-end reconciliation fixture.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Documents seeds the document store.
	Documents []DocumentFixture `yaml:"documents,omitempty"`

	// WorkItems seeds the workflow tracker.
	WorkItems []WorkItemFixture `yaml:"work_items,omitempty"`

	// DirectoryAccounts seeds the directory service.
	DirectoryAccounts []AccountFixture `yaml:"directory_accounts,omitempty"`

	// TrackerUsers seeds the tracker's user registry.
	TrackerUsers []AccountFixture `yaml:"tracker_users,omitempty"`

	// Passes names the passes to run, in order. "all" runs the whole
	// pipeline.
	Passes []string `yaml:"passes"`
}

// DocumentFixture seeds one person document.
type DocumentFixture struct {
	ID         string `yaml:"id"`
	FirstName  string `yaml:"firstname,omitempty"`
	LastName   string `yaml:"lastname,omitempty"`
	Username   string `yaml:"username,omitempty"`
	Email      string `yaml:"email,omitempty"`
	Telephone  string `yaml:"telephone,omitempty"`
	Git        string `yaml:"git,omitempty"`
	PublicKey  string `yaml:"public_key,omitempty"`
	WorkflowID int    `yaml:"workflow_id,omitempty"`
}

// WorkItemFixture seeds one work item.
type WorkItemFixture struct {
	ID             int    `yaml:"id"`
	Subject        string `yaml:"subject,omitempty"`
	Status         string `yaml:"status"`
	FirstName      string `yaml:"firstname,omitempty"`
	LastName       string `yaml:"lastname,omitempty"`
	Username       string `yaml:"username,omitempty"`
	Email          string `yaml:"email,omitempty"`
	Telephone      string `yaml:"telephone,omitempty"`
	Git            string `yaml:"git,omitempty"`
	PublicKey      string `yaml:"public_key,omitempty"`
	WantsDirectory bool   `yaml:"wants_directory,omitempty"`
	WantsTracker   bool   `yaml:"wants_tracker,omitempty"`
}

// AccountFixture seeds one account profile.
type AccountFixture struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"displayname,omitempty"`
	Email       string `yaml:"email,omitempty"`
	Enabled     bool   `yaml:"enabled,omitempty"`
	LastLogin   string `yaml:"last_login,omitempty"`
}

// knownPasses is the pass vocabulary scenarios may name.
var knownPasses = map[string]bool{
	"all":                             true,
	"initialize":                      true,
	"accounts":                        true,
	"consolidate-tracker-to-document": true,
	"consolidate-document-to-tracker": true,
	"refresh-accounts":                true,
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Passes) == 0 {
		return fmt.Errorf("passes list is required and must be non-empty")
	}
	for i, pass := range s.Passes {
		if !knownPasses[pass] {
			return fmt.Errorf("passes[%d]: unknown pass %q", i, pass)
		}
	}
	for i, d := range s.Documents {
		if d.ID == "" {
			return fmt.Errorf("documents[%d]: id is required", i)
		}
	}
	for i, wi := range s.WorkItems {
		if wi.ID == 0 {
			return fmt.Errorf("work_items[%d]: id is required", i)
		}
		if wi.Status == "" {
			return fmt.Errorf("work_items[%d]: status is required", i)
		}
	}
	for i, a := range s.DirectoryAccounts {
		if a.ID == "" {
			return fmt.Errorf("directory_accounts[%d]: id is required", i)
		}
	}
	for i, a := range s.TrackerUsers {
		if a.ID == "" {
			return fmt.Errorf("tracker_users[%d]: id is required", i)
		}
	}
	return nil
}
