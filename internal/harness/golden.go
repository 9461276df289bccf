package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

// Snapshot is the golden-file shape: the pass reports plus the final
// state of documents and work items. Store revision tokens and lock
// versions are deliberately left out; they encode fake bookkeeping, not
// reconciliation outcomes.
type Snapshot struct {
	Scenario  string               `json:"scenario"`
	Reports   []*engine.PassReport `json:"reports"`
	Documents []documentState      `json:"documents"`
	WorkItems []workItemState      `json:"work_items"`
}

type documentState struct {
	ID               string                 `json:"id"`
	FirstName        string                 `json:"firstname,omitempty"`
	LastName         string                 `json:"lastname,omitempty"`
	Username         string                 `json:"username,omitempty"`
	Email            string                 `json:"email,omitempty"`
	Telephone        string                 `json:"telephone,omitempty"`
	Git              string                 `json:"git,omitempty"`
	PublicKey        string                 `json:"public_key,omitempty"`
	WorkflowID       int                    `json:"workflow_id,omitempty"`
	DirectoryAccount *record.AccountProfile `json:"directory_account,omitempty"`
	TrackerAccount   *record.AccountProfile `json:"tracker_account,omitempty"`
}

type workItemState struct {
	ID             int      `json:"id"`
	Subject        string   `json:"subject,omitempty"`
	Status         string   `json:"status"`
	FirstName      string   `json:"firstname,omitempty"`
	LastName       string   `json:"lastname,omitempty"`
	Username       string   `json:"username,omitempty"`
	Email          string   `json:"email,omitempty"`
	Telephone      string   `json:"telephone,omitempty"`
	Git            string   `json:"git,omitempty"`
	PublicKey      string   `json:"public_key,omitempty"`
	WantsDirectory bool     `json:"wants_directory,omitempty"`
	WantsTracker   bool     `json:"wants_tracker,omitempty"`
	Comments       []string `json:"comments,omitempty"`
}

// RunWithGolden executes a scenario and compares the snapshot against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot, err := buildSnapshot(scenario.Name, result)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}

// buildSnapshot reads the final fake state. Documents come back sorted
// by id, work items sorted by id, so snapshots are deterministic.
func buildSnapshot(name string, result *Result) (*Snapshot, error) {
	ctx := context.Background()

	persons, err := result.Docs.AllPersons(ctx)
	if err != nil {
		return nil, err
	}
	items, err := result.Tracker.ListWorkItems(ctx, "")
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Scenario:  name,
		Reports:   result.Reports,
		Documents: make([]documentState, 0, len(persons)),
		WorkItems: make([]workItemState, 0, len(items)),
	}
	for _, p := range persons {
		d := documentState{
			ID:               p.ID,
			FirstName:        p.FirstName,
			LastName:         p.LastName,
			Username:         p.Username,
			Email:            p.Email,
			Telephone:        p.Telephone,
			Git:              p.Git,
			PublicKey:        p.PublicKey,
			DirectoryAccount: p.DirectoryAccount,
			TrackerAccount:   p.TrackerAccount,
		}
		if p.Workflow != nil {
			d.WorkflowID = p.Workflow.ID
		}
		snapshot.Documents = append(snapshot.Documents, d)
	}
	for _, wi := range items {
		snapshot.WorkItems = append(snapshot.WorkItems, workItemState{
			ID:             wi.ID,
			Subject:        wi.Subject,
			Status:         string(wi.Status),
			FirstName:      wi.FirstName,
			LastName:       wi.LastName,
			Username:       wi.Username,
			Email:          wi.Email,
			Telephone:      wi.Telephone,
			Git:            wi.Git,
			PublicKey:      wi.PublicKey,
			WantsDirectory: wi.WantsDirectory,
			WantsTracker:   wi.WantsTracker,
			Comments:       result.Tracker.Comments[wi.ID],
		})
	}
	return snapshot, nil
}
