package engine

import (
	"context"

	"github.com/rawdlite/onboardsync/internal/record"
)

// maxConflictRetries bounds the re-fetch-and-retry loop on stale
// concurrency tokens so a livelocked work item cannot stall the pass.
const maxConflictRetries = 3

// Diagnostic comments appended to work items. Comments are an
// append-only audit trail and are never overwritten.
const (
	commentNoDocument = "No person document is linked to this work item. " +
		"Reverting to In specification until the document exists."
	commentDuplicateDocuments = "Multiple person documents are linked to this work item. " +
		"Reverting to In specification; please resolve the duplicates first."
)

// revertForAttention appends a diagnostic comment and reverts the work
// item to In specification, the single well-known needs-attention
// status. Reverts never target New or a terminal status.
func (e *Engine) revertForAttention(ctx context.Context, wi *record.WorkItem, comment string) error {
	if err := e.tracker.AddComment(ctx, wi.ID, comment); err != nil {
		return err
	}
	return e.transition(ctx, wi, record.StatusInSpecification)
}

// advance moves the work item forward, optionally with a comment first.
func (e *Engine) advance(ctx context.Context, wi *record.WorkItem, target record.Status, comment string) error {
	if comment != "" {
		if err := e.tracker.AddComment(ctx, wi.ID, comment); err != nil {
			return err
		}
	}
	return e.transition(ctx, wi, target)
}

// transition drives the work item to the target status.
//
// Statuses outside the managed set (New, In specification, Scheduled,
// In progress) are human territory; a work item already sitting on the
// target, or on a status this system does not manage as a source, is
// left alone. The concurrency token is re-read immediately before the
// mutation and never reused; stale-token rejections are retried with a
// fresh read, bounded by maxConflictRetries.
func (e *Engine) transition(ctx context.Context, wi *record.WorkItem, target record.Status) error {
	if wi.Status == target {
		e.log.Debug("status already current", "work_item", wi.ID, "status", string(target))
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		fresh, err := e.tracker.GetWorkItem(ctx, wi.ID)
		if err != nil {
			return err
		}
		if fresh.Status == target {
			wi.Status = target
			return nil
		}
		fresh.Status = target
		updated, err := e.tracker.UpdateWorkItem(ctx, fresh)
		if err == nil {
			wi.Status = updated.Status
			wi.LockVersion = updated.LockVersion
			return nil
		}
		if !IsConflict(err) {
			return err
		}
		lastErr = err
		e.log.Debug("stale token, retrying status update",
			"work_item", wi.ID, "target", string(target), "attempt", attempt+1)
	}
	return WrapError(ErrCodeConflict, "tracker", lastErr,
		"status update for work item %d kept conflicting after %d attempts", wi.ID, maxConflictRetries)
}
