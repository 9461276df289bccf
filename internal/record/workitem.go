package record

// WorkItem is the workflow-tracker entity representing the human task of
// onboarding one person.
//
// Subject is expected to mirror the canonical Person identifier but is
// neither unique nor reliably cased; the engine re-derives the pairing by
// matching when the stored link is missing. LockVersion is the tracker's
// optimistic-concurrency token and must be re-read immediately before
// every mutation, or the remote store rejects the update.
type WorkItem struct {
	ID          int
	Subject     string
	Status      Status
	LockVersion int

	FirstName string
	LastName  string
	Username  string
	Email     string
	Telephone string
	Git       string
	PublicKey string

	// WantsDirectory and WantsTracker flag which accounts the person
	// requested during onboarding.
	WantsDirectory bool
	WantsTracker   bool
}

// Clone returns a copy of the work item.
func (w *WorkItem) Clone() *WorkItem {
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}
