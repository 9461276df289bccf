// Package directory is the directory-service client. It speaks the OCS
// provisioning API: account listing, per-account detail and creation.
package directory

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
const System = "directory"

const usersPath = "/ocs/v2.php/cloud/users"

// Compile-time interface check.
var _ engine.Directory = (*Client)(nil)

// Client talks to one directory-service instance.
type Client struct {
	base     string
	username string
	password string
	http     *http.Client
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

// New creates a directory-service client.
func New(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		base:     baseURL,
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

// ocsEnvelope is the "ocs" wrapper every response carries.
type ocsEnvelope struct {
	OCS struct {
		Meta struct {
			Status     string `json:"status"`
			StatusCode int    `json:"statuscode"`
			Message    string `json:"message"`
		} `json:"meta"`
		Data json.RawMessage `json:"data"`
	} `json:"ocs"`
}

type userListData struct {
	Users []string `json:"users"`
}

// userData is the per-account detail payload.
type userData struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayname"`
	Email       string   `json:"email"`
	Enabled     bool     `json:"enabled"`
	LastLogin   int64    `json:"lastLogin"`
	Groups      []string `json:"groups"`
	Quota       struct {
		Quota any `json:"quota"`
	} `json:"quota"`
}

func (u userData) profile() *record.AccountProfile {
	p := &record.AccountProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Enabled:     u.Enabled,
		Groups:      u.Groups,
	}
	if u.LastLogin > 0 {
		// The service reports milliseconds since epoch.
		p.LastLogin = time.UnixMilli(u.LastLogin).UTC().Format("2006-01-02")
	}
	if s, ok := u.Quota.Quota.(string); ok {
		p.Quota = s
	}
	return p
}

// ListAccounts returns every account. The listing endpoint only hands
// out ids; each account is fetched individually for its profile.
func (c *Client) ListAccounts(ctx context.Context) ([]*record.AccountProfile, error) {
	var list userListData
	if err := c.do(ctx, http.MethodGet, usersPath, nil, &list); err != nil {
		return nil, err
	}

	accounts := make([]*record.AccountProfile, 0, len(list.Users))
	for _, id := range list.Users {
		account, err := c.GetAccount(ctx, id)
		if err != nil {
			if engine.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// GetAccount fetches one account profile by id.
func (c *Client) GetAccount(ctx context.Context, id string) (*record.AccountProfile, error) {
	var u userData
	if err := c.do(ctx, http.MethodGet, usersPath+"/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return u.profile(), nil
}

// CreateAccount provisions a new account and returns its profile.
func (c *Client) CreateAccount(ctx context.Context, req record.AccountRequest) (*record.AccountProfile, error) {
	if req.Username == "" || req.Email == "" {
		return nil, engine.NewError(engine.ErrCodeValidation, System, "account request needs username and email")
	}
	body := map[string]any{
		"userid":      req.Username,
		"email":       req.Email,
		"displayName": req.FirstName + " " + req.LastName,
	}
	if err := c.do(ctx, http.MethodPost, usersPath, body, nil); err != nil {
		return nil, err
	}
	return c.GetAccount(ctx, req.Username)
}

// do performs one OCS request and decodes the data payload into out
// (when non-nil). OCS reports failures both via HTTP status and via the
// envelope's meta block; both are mapped onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Buffer
	if in != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path+"?format=json", body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OCS-APIRequest", "true")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return engine.WrapError(engine.ErrCodeRemoteUnavailable, System, err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return engine.NewError(engine.ErrCodeNotFound, System, "%s %s", method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return engine.NewError(engine.ErrCodeRemoteUnavailable, System, "%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	var envelope ocsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return engine.WrapError(engine.ErrCodeRemoteUnavailable, System, err, "decode %s %s", method, path)
	}
	if envelope.OCS.Meta.Status != "ok" {
		if envelope.OCS.Meta.StatusCode == http.StatusNotFound {
			return engine.NewError(engine.ErrCodeNotFound, System, "%s %s", method, path)
		}
		return engine.NewError(engine.ErrCodeRemoteUnavailable, System,
			"%s %s: service reported %q (%d)", method, path, envelope.OCS.Meta.Message, envelope.OCS.Meta.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.OCS.Data, out); err != nil {
		return engine.WrapError(engine.ErrCodeRemoteUnavailable, System, err, "decode %s %s data", method, path)
	}
	return nil
}
