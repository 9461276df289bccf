// Package testutil provides in-memory fakes for the three collaborator
// clients plus deterministic clocks and token generators. The fakes
// implement the engine interfaces and support targeted failure
// injection for exercising the per-record error boundary.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

// Compile-time interface checks.
var (
	_ engine.DocumentStore = (*FakeDocumentStore)(nil)
	_ engine.Tracker       = (*FakeTracker)(nil)
	_ engine.Directory     = (*FakeDirectory)(nil)
)

// FakeDocumentStore is an in-memory document store. Documents are
// cloned on every read and write so tests never alias store state.
type FakeDocumentStore struct {
	docs    map[string]*record.Person
	revSeq  int
	Saves   []string // ids in save order
	Deletes []string // ids in delete order

	// ListErr fails the listing calls, simulating a pass-fatal fetch.
	ListErr error
	// SaveErr fails every Save.
	SaveErr error
}

// NewFakeDocumentStore seeds a store. Seeded documents without a
// revision get one assigned.
func NewFakeDocumentStore(persons ...*record.Person) *FakeDocumentStore {
	s := &FakeDocumentStore{docs: make(map[string]*record.Person)}
	for _, p := range persons {
		cp := p.Clone()
		if cp.Rev == "" {
			s.revSeq++
			cp.Rev = "1-" + strconv.Itoa(s.revSeq)
		}
		s.docs[cp.ID] = cp
	}
	return s
}

// Get returns the document stored under the exact id.
func (s *FakeDocumentStore) Get(_ context.Context, id string) (*record.Person, error) {
	p, ok := s.docs[id]
	if !ok {
		return nil, engine.NewError(engine.ErrCodeNotFound, "document", "document %q", id)
	}
	return p.Clone(), nil
}

// Save stores the document, enforcing revision checks like the real
// store: writing over an existing document needs its current revision.
func (s *FakeDocumentStore) Save(_ context.Context, p *record.Person) (string, string, error) {
	if s.SaveErr != nil {
		return "", "", s.SaveErr
	}
	if existing, ok := s.docs[p.ID]; ok && existing.Rev != p.Rev {
		return "", "", engine.NewError(engine.ErrCodeConflict, "document", "document %q: revision is stale", p.ID)
	}
	s.revSeq++
	cp := p.Clone()
	cp.Rev = strconv.Itoa(s.revSeq+1) + "-" + strconv.Itoa(s.revSeq)
	s.docs[cp.ID] = cp
	s.Saves = append(s.Saves, cp.ID)
	p.Rev = cp.Rev
	return cp.ID, cp.Rev, nil
}

// Delete removes the document.
func (s *FakeDocumentStore) Delete(_ context.Context, p *record.Person) error {
	if _, ok := s.docs[p.ID]; !ok {
		return engine.NewError(engine.ErrCodeNotFound, "document", "document %q", p.ID)
	}
	delete(s.docs, p.ID)
	s.Deletes = append(s.Deletes, p.ID)
	return nil
}

// AllPersons returns every document ordered by id.
func (s *FakeDocumentStore) AllPersons(_ context.Context) ([]*record.Person, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.list(func(*record.Person) bool { return true }), nil
}

// PersonsWithoutWorkflow returns documents without a work item link.
func (s *FakeDocumentStore) PersonsWithoutWorkflow(_ context.Context) ([]*record.Person, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.list(func(p *record.Person) bool { return !p.Linked() }), nil
}

// PersonsByWorkflowID returns documents linked to the work item.
func (s *FakeDocumentStore) PersonsByWorkflowID(_ context.Context, id int) ([]*record.Person, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.list(func(p *record.Person) bool { return p.Linked() && p.Workflow.ID == id }), nil
}

// Stored returns the current stored document, for assertions.
func (s *FakeDocumentStore) Stored(id string) *record.Person {
	return s.docs[id].Clone()
}

// Has reports whether a document exists under the exact id.
func (s *FakeDocumentStore) Has(id string) bool {
	_, ok := s.docs[id]
	return ok
}

// Len returns the number of stored documents.
func (s *FakeDocumentStore) Len() int { return len(s.docs) }

func (s *FakeDocumentStore) list(keep func(*record.Person) bool) []*record.Person {
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []*record.Person{}
	for _, id := range ids {
		if keep(s.docs[id]) {
			out = append(out, s.docs[id].Clone())
		}
	}
	return out
}

// FakeTracker is an in-memory workflow tracker with lock-version
// checking and an inspectable comment log.
type FakeTracker struct {
	nextID int
	items  map[int]*record.WorkItem

	// Comments records appended comments per work item id.
	Comments map[int][]string

	// Users is the user registry returned by ListUsers.
	Users []*record.AccountProfile
	// CreatedUsers records CreateUser requests.
	CreatedUsers []record.AccountRequest

	// ConflictsRemaining forces the next N updates to fail with a
	// stale-token conflict while bumping the stored lock version, as
	// if a concurrent writer got in between read and write.
	ConflictsRemaining int

	// ListErr fails ListWorkItems and ListUsers.
	ListErr error
	// CreateErr fails CreateWorkItem.
	CreateErr error
	// CreateUserErr fails CreateUser.
	CreateUserErr error
	// CommentErr fails AddComment.
	CommentErr error
}

// NewFakeTracker seeds a tracker. Seeded items without an id get one
// assigned.
func NewFakeTracker(items ...*record.WorkItem) *FakeTracker {
	t := &FakeTracker{
		items:    make(map[int]*record.WorkItem),
		Comments: make(map[int][]string),
	}
	for _, wi := range items {
		cp := wi.Clone()
		if cp.ID == 0 {
			t.nextID++
			cp.ID = t.nextID
		} else if cp.ID > t.nextID {
			t.nextID = cp.ID
		}
		t.items[cp.ID] = cp
	}
	return t
}

// ListWorkItems returns items with the given status (all when empty),
// ordered by id.
func (t *FakeTracker) ListWorkItems(_ context.Context, status record.Status) ([]*record.WorkItem, error) {
	if t.ListErr != nil {
		return nil, t.ListErr
	}
	ids := make([]int, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []*record.WorkItem{}
	for _, id := range ids {
		if status == "" || t.items[id].Status == status {
			out = append(out, t.items[id].Clone())
		}
	}
	return out, nil
}

// GetWorkItem returns the item with its current lock version.
func (t *FakeTracker) GetWorkItem(_ context.Context, id int) (*record.WorkItem, error) {
	wi, ok := t.items[id]
	if !ok {
		return nil, engine.NewError(engine.ErrCodeNotFound, "tracker", "work package %d", id)
	}
	return wi.Clone(), nil
}

// CreateWorkItem stores a new item with a fresh id.
func (t *FakeTracker) CreateWorkItem(_ context.Context, wi *record.WorkItem) (*record.WorkItem, error) {
	if t.CreateErr != nil {
		return nil, t.CreateErr
	}
	t.nextID++
	cp := wi.Clone()
	cp.ID = t.nextID
	cp.LockVersion = 0
	t.items[cp.ID] = cp
	return cp.Clone(), nil
}

// UpdateWorkItem replaces the stored item when the submitted lock
// version is current, bumping it. Injected conflicts simulate a
// concurrent writer.
func (t *FakeTracker) UpdateWorkItem(_ context.Context, wi *record.WorkItem) (*record.WorkItem, error) {
	stored, ok := t.items[wi.ID]
	if !ok {
		return nil, engine.NewError(engine.ErrCodeNotFound, "tracker", "work package %d", wi.ID)
	}
	if t.ConflictsRemaining > 0 {
		t.ConflictsRemaining--
		stored.LockVersion++
		return nil, engine.NewError(engine.ErrCodeConflict, "tracker", "work package %d: lock version is stale", wi.ID)
	}
	if wi.LockVersion != stored.LockVersion {
		return nil, engine.NewError(engine.ErrCodeConflict, "tracker", "work package %d: lock version is stale", wi.ID)
	}
	cp := wi.Clone()
	cp.LockVersion = stored.LockVersion + 1
	t.items[cp.ID] = cp
	return cp.Clone(), nil
}

// AddComment appends to the item's comment log.
func (t *FakeTracker) AddComment(_ context.Context, id int, text string) error {
	if t.CommentErr != nil {
		return t.CommentErr
	}
	if _, ok := t.items[id]; !ok {
		return engine.NewError(engine.ErrCodeNotFound, "tracker", "work package %d", id)
	}
	t.Comments[id] = append(t.Comments[id], text)
	return nil
}

// ListUsers returns the seeded user registry.
func (t *FakeTracker) ListUsers(_ context.Context) ([]*record.AccountProfile, error) {
	if t.ListErr != nil {
		return nil, t.ListErr
	}
	out := make([]*record.AccountProfile, 0, len(t.Users))
	for _, u := range t.Users {
		out = append(out, u.Clone())
	}
	return out, nil
}

// CreateUser records the request and registers the account.
func (t *FakeTracker) CreateUser(_ context.Context, req record.AccountRequest) (*record.AccountProfile, error) {
	if t.CreateUserErr != nil {
		return nil, t.CreateUserErr
	}
	t.CreatedUsers = append(t.CreatedUsers, req)
	profile := &record.AccountProfile{
		ID:          req.Username,
		DisplayName: strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:       req.Email,
		Enabled:     true,
	}
	t.Users = append(t.Users, profile.Clone())
	return profile, nil
}

// Item returns the stored work item, for assertions.
func (t *FakeTracker) Item(id int) *record.WorkItem {
	return t.items[id].Clone()
}

// Len returns the number of stored work items.
func (t *FakeTracker) Len() int { return len(t.items) }

// FakeDirectory is an in-memory directory service.
type FakeDirectory struct {
	accounts map[string]*record.AccountProfile
	order    []string

	// CreatedAccounts records CreateAccount requests.
	CreatedAccounts []record.AccountRequest

	// ListErr fails ListAccounts.
	ListErr error
	// CreateErr fails CreateAccount.
	CreateErr error
}

// NewFakeDirectory seeds a directory service.
func NewFakeDirectory(accounts ...*record.AccountProfile) *FakeDirectory {
	d := &FakeDirectory{accounts: make(map[string]*record.AccountProfile)}
	for _, a := range accounts {
		d.accounts[a.ID] = a.Clone()
		d.order = append(d.order, a.ID)
	}
	return d
}

// ListAccounts returns accounts in seeded order.
func (d *FakeDirectory) ListAccounts(_ context.Context) ([]*record.AccountProfile, error) {
	if d.ListErr != nil {
		return nil, d.ListErr
	}
	out := make([]*record.AccountProfile, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.accounts[id].Clone())
	}
	return out, nil
}

// GetAccount returns one account.
func (d *FakeDirectory) GetAccount(_ context.Context, id string) (*record.AccountProfile, error) {
	a, ok := d.accounts[id]
	if !ok {
		return nil, engine.NewError(engine.ErrCodeNotFound, "directory", "account %q", id)
	}
	return a.Clone(), nil
}

// CreateAccount records the request and registers the account.
func (d *FakeDirectory) CreateAccount(_ context.Context, req record.AccountRequest) (*record.AccountProfile, error) {
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	if _, ok := d.accounts[req.Username]; ok {
		return nil, engine.NewError(engine.ErrCodeRemoteUnavailable, "directory", "account %q already exists", req.Username)
	}
	d.CreatedAccounts = append(d.CreatedAccounts, req)
	profile := &record.AccountProfile{
		ID:          req.Username,
		DisplayName: strings.TrimSpace(fmt.Sprintf("%s %s", req.FirstName, req.LastName)),
		Email:       req.Email,
		Enabled:     true,
	}
	d.accounts[profile.ID] = profile.Clone()
	d.order = append(d.order, profile.ID)
	return profile, nil
}
