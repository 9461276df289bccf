// Package tracker is the workflow-tracker client. It speaks the
// tracker's v3 HAL API: offset-paginated collections, lock-versioned
// work package updates, activity comments and the user registry.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

// System is the collaborator name used in error reporting.
const System = "tracker"

// apiUser is the fixed basic-auth user for apikey authentication.
const apiUser = "apikey"

// Compile-time interface check.
var _ engine.Tracker = (*Client)(nil)

// Client talks to one project on a tracker instance.
type Client struct {
	base      string
	apikey    string
	projectID int
	pageSize  int
	fields    FieldMapping
	statuses  record.StatusTable
	log       *slog.Logger
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithFieldMapping overrides the custom-field key mapping.
func WithFieldMapping(fm FieldMapping) Option {
	return func(c *Client) { c.fields = fm }
}

// WithStatusTable overrides the status id table.
func WithStatusTable(t record.StatusTable) Option {
	return func(c *Client) { c.statuses = t }
}

// WithPageSize sets the collection page size.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a tracker client bound to one project.
func New(baseURL, apikey string, projectID int, opts ...Option) *Client {
	c := &Client{
		base:      baseURL,
		apikey:    apikey,
		projectID: projectID,
		pageSize:  20,
		fields:    DefaultFieldMapping(),
		statuses:  record.DefaultStatusTable(),
		log:       slog.Default(),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListWorkItems returns the project's work packages, optionally
// filtered to one status. The listing paginates by offset, following
// the next link until the advertised total is reached or the remote
// stops advertising a next link, whichever comes first. The first page
// failing fails the call; later page failures truncate the result,
// since partial synchronization beats none.
func (c *Client) ListWorkItems(ctx context.Context, status record.Status) ([]*record.WorkItem, error) {
	query := url.Values{
		"offset":   {"1"},
		"pageSize": {strconv.Itoa(c.pageSize)},
	}
	if status != "" {
		id, ok := c.statuses.ID(status)
		if !ok {
			return nil, engine.NewError(engine.ErrCodeValidation, System, "unknown status %q", status)
		}
		filter := fmt.Sprintf(`[{"status":{"operator":"=","values":["%d"]}}]`, id)
		query.Set("filters", filter)
	}

	path := fmt.Sprintf("/api/v3/projects/%d/work_packages", c.projectID)
	elements, err := c.fetchAll(ctx, path, query)
	if err != nil {
		return nil, err
	}

	items := make([]*record.WorkItem, 0, len(elements))
	for _, raw := range elements {
		wi, err := decodeWorkPackage(raw, c.fields)
		if err != nil {
			c.log.Warn("skipping undecodable work package", "error", err)
			continue
		}
		items = append(items, wi)
	}
	return items, nil
}

// GetWorkItem fetches one work package, including its current
// concurrency token.
func (c *Client) GetWorkItem(ctx context.Context, id int) (*record.WorkItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v3/work_packages/%d", id), nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeWorkPackage(raw, c.fields)
}

// CreateWorkItem creates a work package in the project and returns the
// stored representation.
func (c *Client) CreateWorkItem(ctx context.Context, wi *record.WorkItem) (*record.WorkItem, error) {
	statusID := 0
	if wi.Status != "" {
		id, ok := c.statuses.ID(wi.Status)
		if !ok {
			return nil, engine.NewError(engine.ErrCodeValidation, System, "unknown status %q", wi.Status)
		}
		statusID = id
	}
	body := encodeWorkPackage(wi, c.fields, statusID, false)

	var raw json.RawMessage
	path := fmt.Sprintf("/api/v3/projects/%d/work_packages", c.projectID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return decodeWorkPackage(raw, c.fields)
}

// UpdateWorkItem submits the work item's fields and status under its
// LockVersion. A stale token yields a CONFLICT error; callers re-read
// and retry.
func (c *Client) UpdateWorkItem(ctx context.Context, wi *record.WorkItem) (*record.WorkItem, error) {
	statusID, ok := c.statuses.ID(wi.Status)
	if !ok {
		return nil, engine.NewError(engine.ErrCodeValidation, System, "unknown status %q", wi.Status)
	}
	body := encodeWorkPackage(wi, c.fields, statusID, true)

	var raw json.RawMessage
	path := fmt.Sprintf("/api/v3/work_packages/%d", wi.ID)
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &raw); err != nil {
		return nil, err
	}
	return decodeWorkPackage(raw, c.fields)
}

// AddComment appends a comment to the work package's activity stream.
func (c *Client) AddComment(ctx context.Context, id int, text string) error {
	body := map[string]any{
		"comment": map[string]any{"raw": text},
	}
	path := fmt.Sprintf("/api/v3/work_packages/%d/activities", id)
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

// ListUsers returns every user account on the instance, paginated like
// the work package listing.
func (c *Client) ListUsers(ctx context.Context) ([]*record.AccountProfile, error) {
	query := url.Values{
		"offset":   {"1"},
		"pageSize": {strconv.Itoa(c.pageSize)},
	}
	elements, err := c.fetchAll(ctx, "/api/v3/users", query)
	if err != nil {
		return nil, err
	}

	profiles := make([]*record.AccountProfile, 0, len(elements))
	for _, raw := range elements {
		var u user
		if err := json.Unmarshal(raw, &u); err != nil {
			c.log.Warn("skipping undecodable user", "error", err)
			continue
		}
		profiles = append(profiles, u.profile())
	}
	return profiles, nil
}

// CreateUser creates a user account in invited state.
func (c *Client) CreateUser(ctx context.Context, req record.AccountRequest) (*record.AccountProfile, error) {
	if req.Username == "" || req.Email == "" {
		return nil, engine.NewError(engine.ErrCodeValidation, System, "account request needs username and email")
	}
	body := map[string]any{
		"login":     req.Username,
		"email":     req.Email,
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"status":    "invited",
	}
	var u user
	if err := c.do(ctx, http.MethodPost, "/api/v3/users", nil, body, &u); err != nil {
		return nil, err
	}
	return u.profile(), nil
}

// fetchAll follows the offset pagination of a collection endpoint and
// returns the concatenated elements.
func (c *Client) fetchAll(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	var first page
	if err := c.do(ctx, http.MethodGet, path, query, nil, &first); err != nil {
		return nil, err
	}

	elements := append([]json.RawMessage(nil), first.Embedded.Elements...)
	current := first
	for current.Links.NextByOffset != nil && len(elements) < first.Total {
		var next page
		if err := c.do(ctx, http.MethodGet, current.Links.NextByOffset.Href, nil, nil, &next); err != nil {
			// Partial synchronization beats none: keep what we have.
			c.log.Warn("pagination truncated", "path", path, "fetched", len(elements), "total", first.Total, "error", err)
			break
		}
		elements = append(elements, next.Embedded.Elements...)
		current = next
	}
	return elements, nil
}

// do performs one JSON request against the tracker. path may be
// absolute-with-query (as handed out in next links) or a plain path
// with a separate query.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.base + path
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
	req.SetBasicAuth(apiUser, c.apikey)

	resp, err := c.http.Do(req)
	if err != nil {
		return engine.WrapError(engine.ErrCodeRemoteUnavailable, System, err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return engine.NewError(engine.ErrCodeNotFound, System, "%s %s", method, path)
	case resp.StatusCode == http.StatusConflict:
		return engine.NewError(engine.ErrCodeConflict, System, "%s %s: lock version is stale", method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return engine.NewError(engine.ErrCodeRemoteUnavailable, System, "%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return engine.WrapError(engine.ErrCodeRemoteUnavailable, System, err, "decode %s %s", method, path)
	}
	return nil
}
