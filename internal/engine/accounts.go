package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rawdlite/onboardsync/internal/record"
)

// CreateAccounts is the account-creation pass. For each work item in
// Scheduled it resolves the linked person document by the stored link
// (never by re-matching) and attempts each requested account type
// independently: a directory-service failure must not block the tracker
// account attempt, and vice versa. Any successful creation advances the
// work item to In progress; failures leave the status unchanged so the
// item is retried next run.
func (e *Engine) CreateAccounts(ctx context.Context) *PassReport {
	r := e.beginPass(ctx, "accounts")

	items, err := e.tracker.ListWorkItems(ctx, record.StatusScheduled)
	if err != nil {
		return e.finishPass(ctx, r, WrapError(ErrCodeFetch, "tracker", err, "list scheduled work items"))
	}
	if len(items) == 0 {
		return e.finishPass(ctx, r, nil)
	}

	cache, err := e.loadPersons(ctx)
	if err != nil {
		return e.finishPass(ctx, r, err)
	}

	for _, wi := range items {
		e.createAccountsFor(ctx, r, cache, wi)
	}
	return e.finishPass(ctx, r, nil)
}

func (e *Engine) createAccountsFor(ctx context.Context, r *PassReport, cache *passCache, wi *record.WorkItem) {
	key := workItemKey(wi)

	p, ok := e.resolveLinked(ctx, r, cache, wi)
	if !ok {
		return
	}

	wi.Username = record.FoldUmlauts(wi.Username)
	req := record.AccountRequest{
		Username:  wi.Username,
		Email:     wi.Email,
		FirstName: wi.FirstName,
		LastName:  wi.LastName,
	}

	var created, failed int

	if wi.WantsDirectory {
		switch {
		case p.DirectoryAccount != nil:
			e.log.Debug("directory account already exists", "work_item", wi.ID, "account", p.DirectoryAccount.ID)
		default:
			if e.createOne(ctx, wi, "directory", req, func(profile *record.AccountProfile) {
				p.DirectoryAccount = profile
			}) {
				created++
			} else {
				failed++
			}
		}
	}

	if wi.WantsTracker {
		switch {
		case p.TrackerAccount != nil:
			e.log.Debug("tracker account already exists", "work_item", wi.ID, "account", p.TrackerAccount.ID)
		default:
			if e.createOne(ctx, wi, "tracker", req, func(profile *record.AccountProfile) {
				p.TrackerAccount = profile
			}) {
				created++
			} else {
				failed++
			}
		}
	}

	if created > 0 {
		if _, _, err := e.docs.Save(ctx, p); err != nil {
			e.record(ctx, r, key, OutcomeFailed, fmt.Sprintf("accounts created but snapshot not saved: %v", err))
			return
		}
		if err := e.advance(ctx, wi, record.StatusInProgress, ""); err != nil {
			e.record(ctx, r, key, OutcomeFailed, fmt.Sprintf("accounts created but status not advanced: %v", err))
			return
		}
		e.record(ctx, r, key, OutcomeUpdated, fmt.Sprintf("%d account(s) created", created))
		return
	}

	if failed > 0 {
		// Status deliberately unchanged; the item stays in Scheduled
		// and is retried on the next run.
		e.record(ctx, r, key, OutcomeFailed, fmt.Sprintf("%d account creation(s) failed", failed))
		return
	}

	e.record(ctx, r, key, OutcomeUnchanged, "no account work requested or outstanding")
}

// createOne attempts a single account creation. Success and failure are
// both commented on the work item; only the outcome bookkeeping differs.
func (e *Engine) createOne(ctx context.Context, wi *record.WorkItem, system string, req record.AccountRequest, store func(*record.AccountProfile)) bool {
	var (
		profile *record.AccountProfile
		err     error
	)
	switch system {
	case "directory":
		profile, err = e.directory.CreateAccount(ctx, req)
	default:
		profile, err = e.tracker.CreateUser(ctx, req)
	}
	if err != nil {
		e.log.Warn("account creation failed", "work_item", wi.ID, "system", system, "username", req.Username, "error", err)
		comment := fmt.Sprintf("Failed to create %s account for %q: %v", system, req.Username, err)
		if cerr := e.tracker.AddComment(ctx, wi.ID, comment); cerr != nil {
			e.log.Warn("diagnostic comment not appended", "work_item", wi.ID, "error", cerr)
		}
		return false
	}

	store(profile)
	detail, merr := json.Marshal(profile)
	if merr != nil {
		detail = []byte(profile.ID)
	}
	comment := fmt.Sprintf("Created %s account: %s", system, detail)
	if cerr := e.tracker.AddComment(ctx, wi.ID, comment); cerr != nil {
		e.log.Warn("creation comment not appended", "work_item", wi.ID, "error", cerr)
	}
	e.log.Info("account created", "work_item", wi.ID, "system", system, "account", profile.ID)
	return true
}

// resolveLinked resolves the person document for a work item by the
// stored link. Zero or multiple documents are needs-attention outcomes:
// diagnostic comment plus revert to In specification.
func (e *Engine) resolveLinked(ctx context.Context, r *PassReport, cache *passCache, wi *record.WorkItem) (*record.Person, bool) {
	key := workItemKey(wi)
	persons := cache.ByWorkflowID(wi.ID)
	switch len(persons) {
	case 1:
		return persons[0], true
	case 0:
		if err := e.revertForAttention(ctx, wi, commentNoDocument); err != nil {
			e.record(ctx, r, key, OutcomeFailed, err.Error())
		} else {
			e.record(ctx, r, key, OutcomeReverted, "no linked person document")
		}
		return nil, false
	default:
		if err := e.revertForAttention(ctx, wi, commentDuplicateDocuments); err != nil {
			e.record(ctx, r, key, OutcomeFailed, err.Error())
		} else {
			e.record(ctx, r, key, OutcomeReverted, fmt.Sprintf("%d person documents share this link", len(persons)))
		}
		return nil, false
	}
}

func workItemKey(wi *record.WorkItem) string {
	return "work-item/" + strconv.Itoa(wi.ID)
}
