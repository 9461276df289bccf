package engine

import (
	"context"
	"strings"

	"github.com/rawdlite/onboardsync/internal/match"
	"github.com/rawdlite/onboardsync/internal/record"
)

// RefreshAccounts re-syncs the account profile snapshots stored on the
// person documents from the two account-issuing services. Owners are
// resolved through the match predicate chain (previously-assigned
// account id first, then login, email and name). Accounts with no owner
// or an ambiguous owner are skipped: deprovisioning is deliberately out
// of scope, and ambiguity is never auto-resolved.
func (e *Engine) RefreshAccounts(ctx context.Context) *PassReport {
	r := e.beginPass(ctx, "refresh-accounts")

	dirAccounts, err := e.directory.ListAccounts(ctx)
	if err != nil {
		return e.finishPass(ctx, r, WrapError(ErrCodeFetch, "directory", err, "list accounts"))
	}
	trackerAccounts, err := e.tracker.ListUsers(ctx)
	if err != nil {
		return e.finishPass(ctx, r, WrapError(ErrCodeFetch, "tracker", err, "list user accounts"))
	}

	cache, err := e.loadPersons(ctx)
	if err != nil {
		return e.finishPass(ctx, r, err)
	}

	for _, a := range dirAccounts {
		e.refreshSnapshot(ctx, r, cache, a, match.SourceDirectory)
	}
	for _, a := range trackerAccounts {
		e.refreshSnapshot(ctx, r, cache, a, match.SourceTracker)
	}
	return e.finishPass(ctx, r, nil)
}

func (e *Engine) refreshSnapshot(ctx context.Context, r *PassReport, cache *passCache, profile *record.AccountProfile, src match.Source) {
	system := "directory"
	if src == match.SourceTracker {
		system = "tracker"
	}
	key := system + "-account/" + profile.ID

	first, last := splitDisplayName(profile.DisplayName)
	res := match.Find(cache.persons, match.Target{
		Source:     src,
		AssignedID: profile.ID,
		Username:   profile.ID,
		Email:      profile.Email,
		FirstName:  first,
		LastName:   last,
	})

	switch res.Kind {
	case match.NoMatch:
		e.record(ctx, r, key, OutcomeSkipped, "no person document owns this account")
		return
	case match.Ambiguous:
		ids := make([]string, len(res.Matches))
		for i, m := range res.Matches {
			ids[i] = m.ID
		}
		e.record(ctx, r, key, OutcomeSkipped, "ambiguous owner: "+strings.Join(ids, ", "))
		return
	}

	p := res.Person
	snapshot := profile.Clone()
	var current *record.AccountProfile
	if src == match.SourceDirectory {
		current = p.DirectoryAccount
	} else {
		current = p.TrackerAccount
	}
	if current.Equal(snapshot) {
		e.record(ctx, r, key, OutcomeUnchanged, "snapshot current on "+p.ID)
		return
	}

	if src == match.SourceDirectory {
		p.DirectoryAccount = snapshot
	} else {
		p.TrackerAccount = snapshot
	}
	if _, _, err := e.docs.Save(ctx, p); err != nil {
		e.record(ctx, r, key, OutcomeFailed, err.Error())
		return
	}
	e.record(ctx, r, key, OutcomeUpdated, "snapshot refreshed on "+p.ID)
}

// splitDisplayName breaks "First Middle Last" into a (first, rest) pair
// for the conjunctive name predicate.
func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
