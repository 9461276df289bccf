// Package engine implements the identity reconciliation pipeline: the
// four passes that keep the document store, the workflow tracker and the
// directory service consistent with each other.
//
// The engine owns no transport. It consumes the three collaborator
// interfaces defined here, which the concrete HTTP clients and the test
// fakes both satisfy. All collaborator clients are constructed once per
// run and injected; the engine never builds its own.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rawdlite/onboardsync/internal/record"
)

// DocumentStore is the document-store contract the engine consumes.
type DocumentStore interface {
	Get(ctx context.Context, id string) (*record.Person, error)
	Save(ctx context.Context, p *record.Person) (id, rev string, err error)
	Delete(ctx context.Context, p *record.Person) error
	AllPersons(ctx context.Context) ([]*record.Person, error)
	PersonsWithoutWorkflow(ctx context.Context) ([]*record.Person, error)
	PersonsByWorkflowID(ctx context.Context, id int) ([]*record.Person, error)
}

// Tracker is the workflow-tracker contract the engine consumes.
//
// UpdateWorkItem submits the work item's LockVersion and fails with a
// CONFLICT error when it is stale; callers re-read immediately before
// every mutation and never reuse a token across two mutations.
type Tracker interface {
	ListWorkItems(ctx context.Context, status record.Status) ([]*record.WorkItem, error)
	GetWorkItem(ctx context.Context, id int) (*record.WorkItem, error)
	CreateWorkItem(ctx context.Context, wi *record.WorkItem) (*record.WorkItem, error)
	UpdateWorkItem(ctx context.Context, wi *record.WorkItem) (*record.WorkItem, error)
	AddComment(ctx context.Context, id int, text string) error
	ListUsers(ctx context.Context) ([]*record.AccountProfile, error)
	CreateUser(ctx context.Context, req record.AccountRequest) (*record.AccountProfile, error)
}

// Directory is the directory-service contract the engine consumes.
type Directory interface {
	ListAccounts(ctx context.Context) ([]*record.AccountProfile, error)
	GetAccount(ctx context.Context, id string) (*record.AccountProfile, error)
	CreateAccount(ctx context.Context, req record.AccountRequest) (*record.AccountProfile, error)
}

// Recorder persists pass runs and per-record outcomes. The journal
// package provides the SQLite implementation; NopRecorder backs tests.
type Recorder interface {
	BeginRun(ctx context.Context, token, pass string, startedAt time.Time) error
	RecordOutcome(ctx context.Context, token string, seq int, key string, outcome, detail string) error
	FinishRun(ctx context.Context, token string, finishedAt time.Time, outcome string, processed, skipped, failed int) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) BeginRun(context.Context, string, string, time.Time) error { return nil }
func (NopRecorder) RecordOutcome(context.Context, string, int, string, string, string) error {
	return nil
}
func (NopRecorder) FinishRun(context.Context, string, time.Time, string, int, int, int) error {
	return nil
}

// TokenGenerator produces run tokens for pass reports and the journal.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered run tokens.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Engine sequences the reconciliation passes over the three stores.
type Engine struct {
	docs      DocumentStore
	tracker   Tracker
	directory Directory

	journal  Recorder
	log      *slog.Logger
	statuses record.StatusTable
	fields   []record.Field
	tokens   TokenGenerator
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal sets the pass journal recorder.
func WithJournal(r Recorder) Option {
	return func(e *Engine) { e.journal = r }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithStatusTable overrides the tracker status id table.
func WithStatusTable(t record.StatusTable) Option {
	return func(e *Engine) { e.statuses = t }
}

// WithTokenGenerator overrides the run token generator (for tests).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the three collaborator clients.
func New(docs DocumentStore, tracker Tracker, directory Directory, opts ...Option) *Engine {
	e := &Engine{
		docs:      docs,
		tracker:   tracker,
		directory: directory,
		journal:   NopRecorder{},
		log:       slog.Default(),
		statuses:  record.DefaultStatusTable(),
		fields:    record.IdentityFields(),
		tokens:    UUIDv7Generator{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunAll executes every pass once, in pipeline order. A pass-fatal
// error stops that pass but the remaining passes still run; the reports
// carry the outcome of each.
func (e *Engine) RunAll(ctx context.Context) []*PassReport {
	reports := make([]*PassReport, 0, 5)
	for _, run := range []func(context.Context) *PassReport{
		e.Initialize,
		e.CreateAccounts,
		e.ConsolidateTrackerToDocument,
		e.ConsolidateDocumentToTracker,
		e.RefreshAccounts,
	} {
		reports = append(reports, run(ctx))
	}
	return reports
}
