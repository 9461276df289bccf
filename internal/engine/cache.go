package engine

import (
	"context"

	"github.com/rawdlite/onboardsync/internal/record"
)

// passCache is the explicit per-pass record cache. It is built once at
// pass start from a full document listing and indexed for the repeated
// lookups a pass performs. Caches never outlive the pass that built
// them; freshness across passes is not assumed.
type passCache struct {
	persons      []*record.Person
	byID         map[string]*record.Person
	byWorkflowID map[int][]*record.Person
}

// loadPersons fetches all person documents and builds the indexes. A
// fetch failure here is pass-fatal.
func (e *Engine) loadPersons(ctx context.Context) (*passCache, error) {
	persons, err := e.docs.AllPersons(ctx)
	if err != nil {
		return nil, WrapError(ErrCodeFetch, "document", err, "list persons")
	}
	c := &passCache{
		persons:      persons,
		byID:         make(map[string]*record.Person, len(persons)),
		byWorkflowID: make(map[int][]*record.Person),
	}
	for _, p := range persons {
		c.byID[p.CanonicalID()] = p
		if p.Linked() {
			c.byWorkflowID[p.Workflow.ID] = append(c.byWorkflowID[p.Workflow.ID], p)
		}
	}
	return c, nil
}

// ByWorkflowID returns every cached person linked to the work item.
// More than one entry means duplicate documents claim the same link.
func (c *passCache) ByWorkflowID(id int) []*record.Person {
	return c.byWorkflowID[id]
}

// ByID returns the cached person for a canonical identifier.
func (c *passCache) ByID(id string) *record.Person {
	return c.byID[id]
}
