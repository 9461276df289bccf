package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
	"github.com/rawdlite/onboardsync/internal/testutil"
)

// scenarioEpoch is the fixed clock base every scenario runs under.
var scenarioEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// Result captures everything a scenario run produced: the pass reports
// and the final state of all three fakes.
type Result struct {
	Reports []*engine.PassReport

	Docs      *testutil.FakeDocumentStore
	Tracker   *testutil.FakeTracker
	Directory *testutil.FakeDirectory
}

// Run executes a scenario against fresh fakes. Tokens and timestamps
// are deterministic: stubbed run tokens and a stepping clock.
func Run(scenario *Scenario) (*Result, error) {
	docs := testutil.NewFakeDocumentStore(seedDocuments(scenario.Documents)...)
	tracker := testutil.NewFakeTracker(seedWorkItems(scenario.WorkItems)...)
	tracker.Users = seedAccounts(scenario.TrackerUsers)
	directory := testutil.NewFakeDirectory(seedAccounts(scenario.DirectoryAccounts)...)

	eng := engine.New(docs, tracker, directory,
		engine.WithTokenGenerator(testutil.NewStubTokens("run")),
		engine.WithClock(testutil.NewSteppingClock(scenarioEpoch, time.Second).Now),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx := context.Background()
	res := &Result{Docs: docs, Tracker: tracker, Directory: directory}
	for _, pass := range scenario.Passes {
		switch pass {
		case "all":
			res.Reports = append(res.Reports, eng.RunAll(ctx)...)
		case "initialize":
			res.Reports = append(res.Reports, eng.Initialize(ctx))
		case "accounts":
			res.Reports = append(res.Reports, eng.CreateAccounts(ctx))
		case "consolidate-tracker-to-document":
			res.Reports = append(res.Reports, eng.ConsolidateTrackerToDocument(ctx))
		case "consolidate-document-to-tracker":
			res.Reports = append(res.Reports, eng.ConsolidateDocumentToTracker(ctx))
		case "refresh-accounts":
			res.Reports = append(res.Reports, eng.RefreshAccounts(ctx))
		default:
			return nil, fmt.Errorf("unknown pass %q", pass)
		}
	}
	return res, nil
}

func seedDocuments(fixtures []DocumentFixture) []*record.Person {
	persons := make([]*record.Person, 0, len(fixtures))
	for _, f := range fixtures {
		p := &record.Person{
			ID:        f.ID,
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Username:  f.Username,
			Email:     f.Email,
			Telephone: f.Telephone,
			Git:       f.Git,
			PublicKey: f.PublicKey,
		}
		if f.WorkflowID != 0 {
			p.Workflow = &record.WorkflowLink{ID: f.WorkflowID, Subject: f.ID}
		}
		persons = append(persons, p)
	}
	return persons
}

func seedWorkItems(fixtures []WorkItemFixture) []*record.WorkItem {
	items := make([]*record.WorkItem, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, &record.WorkItem{
			ID:             f.ID,
			Subject:        f.Subject,
			Status:         record.Status(f.Status),
			FirstName:      f.FirstName,
			LastName:       f.LastName,
			Username:       f.Username,
			Email:          f.Email,
			Telephone:      f.Telephone,
			Git:            f.Git,
			PublicKey:      f.PublicKey,
			WantsDirectory: f.WantsDirectory,
			WantsTracker:   f.WantsTracker,
		})
	}
	return items
}

func seedAccounts(fixtures []AccountFixture) []*record.AccountProfile {
	accounts := make([]*record.AccountProfile, 0, len(fixtures))
	for _, f := range fixtures {
		accounts = append(accounts, &record.AccountProfile{
			ID:          f.ID,
			DisplayName: f.DisplayName,
			Email:       f.Email,
			Enabled:     f.Enabled,
			LastLogin:   f.LastLogin,
		})
	}
	return accounts
}
