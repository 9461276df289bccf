package engine

import (
	"context"
	"strings"

	"github.com/rawdlite/onboardsync/internal/record"
)

// Canonicalize normalizes the person's document identifier to its
// lowercase form.
//
// The rename is two-phase, not atomic: the document is first written
// under the lowercase identifier (revision token dropped so the store
// assigns a fresh one), the write is verified by identifier equality,
// and only then is the old document deleted. A crash between the two
// phases leaves the old document as an orphan duplicate; re-running is
// safe because an already-lowercase identifier is a no-op.
func (e *Engine) Canonicalize(ctx context.Context, p *record.Person) (*record.Person, bool, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, false, NewError(ErrCodeValidation, "document", "document has an empty identifier")
	}

	canonical := p.CanonicalID()
	if p.ID == canonical {
		return p, false, nil
	}

	oldID := p.ID
	renamed := p.Clone()
	renamed.ID = canonical
	renamed.Rev = ""

	savedID, _, err := e.docs.Save(ctx, renamed)
	if IsConflict(err) {
		// A previous rename crashed between write and delete. The
		// lowercase document already exists; adopt it and finish the
		// interrupted delete below.
		existing, gerr := e.docs.Get(ctx, canonical)
		if gerr != nil {
			return nil, false, gerr
		}
		renamed = existing
		savedID = existing.ID
	} else if err != nil {
		return nil, false, err
	}
	if savedID != canonical {
		return nil, false, NewError(ErrCodeValidation, "document",
			"rename of %q wrote unexpected identifier %q", oldID, savedID)
	}

	// Delete the old document only after the new write is verified.
	old, err := e.docs.Get(ctx, oldID)
	if err != nil {
		if IsNotFound(err) {
			return renamed, true, nil
		}
		return nil, false, err
	}
	if err := e.docs.Delete(ctx, old); err != nil {
		return nil, false, err
	}

	e.log.Info("canonicalized document identifier", "old", oldID, "new", canonical)
	return renamed, true, nil
}
