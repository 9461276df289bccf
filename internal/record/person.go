package record

import "strings"

// Person is the document-store entity representing one onboarding person.
//
// The document identifier is derived from the person's name and is kept
// canonical (all-lowercase) by the engine. Rev is the store-assigned
// revision token; it must round-trip unchanged on save and is never set
// by this system.
type Person struct {
	ID        string `json:"_id"`
	Rev       string `json:"_rev,omitempty"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Git       string `json:"git,omitempty"`
	PublicKey string `json:"public_key,omitempty"`

	// Workflow is the soft foreign key to the tracker Work Item.
	// Nil until the initialize pass has created the Work Item.
	Workflow *WorkflowLink `json:"workflow,omitempty"`

	// DirectoryAccount and TrackerAccount are point-in-time profile
	// snapshots, not live references. They go stale between passes.
	DirectoryAccount *AccountProfile `json:"account_a,omitempty"`
	TrackerAccount   *AccountProfile `json:"account_b,omitempty"`
}

// WorkflowLink ties a Person to its tracker Work Item. Subject mirrors
// the canonical document identifier at link time.
type WorkflowLink struct {
	ID      int    `json:"id"`
	Subject string `json:"subject,omitempty"`
}

// CanonicalID returns the lowercase form of the document identifier.
func (p *Person) CanonicalID() string {
	return strings.ToLower(p.ID)
}

// Linked reports whether the person already carries a Work Item link.
func (p *Person) Linked() bool {
	return p.Workflow != nil && p.Workflow.ID != 0
}

// Clone returns a deep copy of the person.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Workflow != nil {
		wf := *p.Workflow
		cp.Workflow = &wf
	}
	cp.DirectoryAccount = p.DirectoryAccount.Clone()
	cp.TrackerAccount = p.TrackerAccount.Clone()
	return &cp
}
