// Package couch is the document-store client. It speaks the CouchDB
// HTTP API: document get/put/delete, Mango _find queries and the
// _all_docs view.
package couch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

// System is the collaborator name used in error reporting.
const System = "document"

// Compile-time interface check.
var _ engine.DocumentStore = (*Client)(nil)

// Client talks to one database on a document-store server.
type Client struct {
	base     string
	db       string
	username string
	password string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a document-store client for one database.
func New(baseURL, database, username, password string, opts ...Option) *Client {
	c := &Client{
		base:     baseURL,
		db:       database,
		username: username,
		password: password,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches a document by id. Returns a NOT_FOUND error when the
// document does not exist.
func (c *Client) Get(ctx context.Context, id string) (*record.Person, error) {
	var p record.Person
	if err := c.do(ctx, http.MethodGet, c.docPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type saveResponse struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// Save writes the document under its id. The store assigns a fresh
// revision, which Save writes back onto p and returns. A stale revision
// yields a CONFLICT error.
func (c *Client) Save(ctx context.Context, p *record.Person) (id, rev string, err error) {
	if p.ID == "" {
		return "", "", NewError(engine.ErrCodeValidation, "save: document id is empty")
	}
	var res saveResponse
	if err := c.do(ctx, http.MethodPut, c.docPath(p.ID), nil, p, &res); err != nil {
		return "", "", err
	}
	p.Rev = res.Rev
	return res.ID, res.Rev, nil
}

// Delete removes the document at its current revision.
func (c *Client) Delete(ctx context.Context, p *record.Person) error {
	query := url.Values{"rev": {p.Rev}}
	return c.do(ctx, http.MethodDelete, c.docPath(p.ID), query, nil, nil)
}

type findResponse struct {
	Docs []*record.Person `json:"docs"`
}

// Find runs a Mango selector query and returns the matching documents.
func (c *Client) Find(ctx context.Context, selector map[string]any) ([]*record.Person, error) {
	body := map[string]any{"selector": selector}
	var res findResponse
	if err := c.do(ctx, http.MethodPost, c.db+"/_find", nil, body, &res); err != nil {
		return nil, err
	}
	return res.Docs, nil
}

type allDocsResponse struct {
	Rows []struct {
		ID  string         `json:"id"`
		Doc *record.Person `json:"doc"`
	} `json:"rows"`
}

// AllPersons returns every person document in the database. Design
// documents are filtered out.
func (c *Client) AllPersons(ctx context.Context) ([]*record.Person, error) {
	query := url.Values{"include_docs": {"true"}}
	var res allDocsResponse
	if err := c.do(ctx, http.MethodGet, c.db+"/_all_docs", query, nil, &res); err != nil {
		return nil, err
	}
	persons := make([]*record.Person, 0, len(res.Rows))
	for _, row := range res.Rows {
		if row.Doc == nil || isDesignDoc(row.ID) {
			continue
		}
		persons = append(persons, row.Doc)
	}
	return persons, nil
}

// PersonsWithoutWorkflow returns documents that have no work item link
// yet, i.e. onboarding intents the initialize pass still has to pick up.
func (c *Client) PersonsWithoutWorkflow(ctx context.Context) ([]*record.Person, error) {
	return c.Find(ctx, SelectorMissingWorkflow())
}

// PersonsByWorkflowID returns documents linked to the given work item.
func (c *Client) PersonsByWorkflowID(ctx context.Context, id int) ([]*record.Person, error) {
	return c.Find(ctx, SelectorByWorkflowID(id))
}

func (c *Client) docPath(id string) string {
	return c.db + "/" + url.PathEscape(id)
}

func isDesignDoc(id string) bool {
	return len(id) > 8 && id[:8] == "_design/"
}

// do performs one JSON request against the store and decodes the
// response into out (when non-nil). Status codes are mapped onto the
// engine error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.base + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(engine.ErrCodeRemoteUnavailable, err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewError(engine.ErrCodeNotFound, "%s %s", method, path)
	case resp.StatusCode == http.StatusConflict:
		return NewError(engine.ErrCodeConflict, "%s %s: revision is stale", method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return NewError(engine.ErrCodeRemoteUnavailable, "%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return WrapError(engine.ErrCodeRemoteUnavailable, err, "decode %s %s", method, path)
	}
	return nil
}

// NewError builds a document-store engine error.
func NewError(code engine.ErrorCode, format string, args ...any) *engine.Error {
	return engine.NewError(code, System, format, args...)
}

// WrapError builds a document-store engine error around a cause.
func WrapError(code engine.ErrorCode, err error, format string, args ...any) *engine.Error {
	return engine.WrapError(code, System, err, format, args...)
}
