package engine

import (
	"context"
	"fmt"

	"github.com/rawdlite/onboardsync/internal/record"
)

// Initialize is the first pipeline pass. Every person document without
// a work item link gets a new Work Item in status New, linked via
// subject = canonical document identifier, and the link is written back
// onto the document. Re-running the pass is a no-op for linked persons.
func (e *Engine) Initialize(ctx context.Context) *PassReport {
	r := e.beginPass(ctx, "initialize")

	persons, err := e.docs.PersonsWithoutWorkflow(ctx)
	if err != nil {
		return e.finishPass(ctx, r, WrapError(ErrCodeFetch, "document", err, "list unlinked persons"))
	}

	for _, p := range persons {
		e.initializePerson(ctx, r, p)
	}
	return e.finishPass(ctx, r, nil)
}

// initializePerson is the per-record boundary of the initialize pass:
// no error escapes it, each turns into a record outcome instead.
func (e *Engine) initializePerson(ctx context.Context, r *PassReport, p *record.Person) {
	key := p.ID

	p, _, err := e.Canonicalize(ctx, p)
	if err != nil {
		if IsValidation(err) {
			e.record(ctx, r, key, OutcomeSkipped, err.Error())
		} else {
			e.record(ctx, r, key, OutcomeFailed, err.Error())
		}
		return
	}

	if p.Linked() {
		// The selector should not have returned this document, but a
		// second writer may have linked it mid-pass.
		e.record(ctx, r, p.ID, OutcomeUnchanged, fmt.Sprintf("already linked to work item %d", p.Workflow.ID))
		return
	}

	if p.Username == "" {
		p.Username = record.DeriveUsername(p.FirstName, p.LastName)
	}

	wi := &record.WorkItem{
		Subject:        p.ID,
		Status:         record.StatusNew,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Username:       p.Username,
		Email:          p.Email,
		Telephone:      p.Telephone,
		Git:            p.Git,
		PublicKey:      p.PublicKey,
		WantsDirectory: true,
		WantsTracker:   true,
	}
	created, err := e.tracker.CreateWorkItem(ctx, wi)
	if err != nil {
		e.record(ctx, r, p.ID, OutcomeFailed, err.Error())
		return
	}

	p.Workflow = &record.WorkflowLink{ID: created.ID, Subject: created.Subject}
	if _, _, err := e.docs.Save(ctx, p); err != nil {
		e.record(ctx, r, p.ID, OutcomeFailed, fmt.Sprintf("work item %d created but link not saved: %v", created.ID, err))
		return
	}

	e.record(ctx, r, p.ID, OutcomeCreated, fmt.Sprintf("work item %d", created.ID))
}
