package engine

import (
	"context"
	"fmt"

	"github.com/rawdlite/onboardsync/internal/merge"
	"github.com/rawdlite/onboardsync/internal/record"
)

// ConsolidateTrackerToDocument pulls work items in In progress and
// copies the tracker's currently-known identity fields onto the linked
// person document. Unresolvable or ambiguous links are commented and
// reverted to In specification; resolved items re-affirm In progress.
func (e *Engine) ConsolidateTrackerToDocument(ctx context.Context) *PassReport {
	r := e.beginPass(ctx, "consolidate-tracker-to-document")

	items, err := e.tracker.ListWorkItems(ctx, record.StatusInProgress)
	if err != nil {
		return e.finishPass(ctx, r, WrapError(ErrCodeFetch, "tracker", err, "list in-progress work items"))
	}
	if len(items) == 0 {
		return e.finishPass(ctx, r, nil)
	}

	cache, err := e.loadPersons(ctx)
	if err != nil {
		return e.finishPass(ctx, r, err)
	}

	for _, wi := range items {
		e.consolidateToDocument(ctx, r, cache, wi)
	}
	return e.finishPass(ctx, r, nil)
}

func (e *Engine) consolidateToDocument(ctx context.Context, r *PassReport, cache *passCache, wi *record.WorkItem) {
	key := workItemKey(wi)

	p, ok := e.resolveLinked(ctx, r, cache, wi)
	if !ok {
		return
	}

	changed := merge.ApplyToPerson(p, wi, e.fields)
	if changed {
		if _, _, err := e.docs.Save(ctx, p); err != nil {
			e.record(ctx, r, key, OutcomeFailed, err.Error())
			return
		}
	}

	if err := e.transition(ctx, wi, record.StatusInProgress); err != nil {
		e.record(ctx, r, key, OutcomeFailed, fmt.Sprintf("document updated but status not re-affirmed: %v", err))
		return
	}

	if changed {
		e.record(ctx, r, key, OutcomeUpdated, "document "+p.ID)
	} else {
		e.record(ctx, r, key, OutcomeUnchanged, "document "+p.ID)
	}
}

// ConsolidateDocumentToTracker is the opposite direction: person
// document fields are copied onto the work item's custom fields. The
// concurrency token is read fresh immediately before the update and the
// merge is re-applied on every conflict retry.
func (e *Engine) ConsolidateDocumentToTracker(ctx context.Context) *PassReport {
	r := e.beginPass(ctx, "consolidate-document-to-tracker")

	items, err := e.tracker.ListWorkItems(ctx, record.StatusInProgress)
	if err != nil {
		return e.finishPass(ctx, r, WrapError(ErrCodeFetch, "tracker", err, "list in-progress work items"))
	}
	if len(items) == 0 {
		return e.finishPass(ctx, r, nil)
	}

	cache, err := e.loadPersons(ctx)
	if err != nil {
		return e.finishPass(ctx, r, err)
	}

	for _, wi := range items {
		e.consolidateToTracker(ctx, r, cache, wi)
	}
	return e.finishPass(ctx, r, nil)
}

func (e *Engine) consolidateToTracker(ctx context.Context, r *PassReport, cache *passCache, wi *record.WorkItem) {
	key := workItemKey(wi)

	p, ok := e.resolveLinked(ctx, r, cache, wi)
	if !ok {
		return
	}

	changed, err := e.mergeIntoWorkItem(ctx, wi, p)
	if err != nil {
		e.record(ctx, r, key, OutcomeFailed, err.Error())
		return
	}

	if err := e.transition(ctx, wi, record.StatusInProgress); err != nil {
		e.record(ctx, r, key, OutcomeFailed, fmt.Sprintf("fields updated but status not re-affirmed: %v", err))
		return
	}

	if changed {
		e.record(ctx, r, key, OutcomeUpdated, "fields copied from "+p.ID)
	} else {
		e.record(ctx, r, key, OutcomeUnchanged, "fields current with "+p.ID)
	}
}

// mergeIntoWorkItem applies the field map onto a freshly-read work item
// and submits the update, retrying bounded on stale tokens.
func (e *Engine) mergeIntoWorkItem(ctx context.Context, wi *record.WorkItem, p *record.Person) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		fresh, err := e.tracker.GetWorkItem(ctx, wi.ID)
		if err != nil {
			return false, err
		}
		if !merge.ApplyToWorkItem(fresh, p, e.fields) {
			return false, nil
		}
		updated, err := e.tracker.UpdateWorkItem(ctx, fresh)
		if err == nil {
			wi.LockVersion = updated.LockVersion
			return true, nil
		}
		if !IsConflict(err) {
			return false, err
		}
		lastErr = err
	}
	return false, WrapError(ErrCodeConflict, "tracker", lastErr,
		"field update for work item %d kept conflicting after %d attempts", wi.ID, maxConflictRetries)
}
