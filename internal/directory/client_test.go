package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

func ocsOK(data any) map[string]any {
	return map[string]any{
		"ocs": map[string]any{
			"meta": map[string]any{"status": "ok", "statuscode": 200},
			"data": data,
		},
	}
}

func TestGetAccountDecodesProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocs/v2.php/cloud/users/jdoe", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "true", r.Header.Get("OCS-APIRequest"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)

		json.NewEncoder(w).Encode(ocsOK(map[string]any{
			"id":          "jdoe",
			"displayname": "Jane Doe",
			"email":       "jane@example.org",
			"enabled":     true,
			"lastLogin":   1709200800000,
			"groups":      []string{"staff"},
			"quota":       map[string]any{"quota": "5 GB"},
		}))
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret")
	account, err := c.GetAccount(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", account.ID)
	assert.Equal(t, "Jane Doe", account.DisplayName)
	assert.True(t, account.Enabled)
	assert.Equal(t, "2024-02-29", account.LastLogin)
	assert.Equal(t, "5 GB", account.Quota)
	assert.Equal(t, []string{"staff"}, account.Groups)
}

func TestGetAccountToleratesNumericQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ocsOK(map[string]any{
			"id":    "jdoe",
			"quota": map[string]any{"quota": -3},
		}))
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret")
	account, err := c.GetAccount(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Empty(t, account.Quota)
	assert.Empty(t, account.LastLogin)
}

func TestListAccountsFetchesEachProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ocs/v2.php/cloud/users":
			json.NewEncoder(w).Encode(ocsOK(map[string]any{"users": []string{"jdoe", "ghost", "mmuster"}}))
		case "/ocs/v2.php/cloud/users/ghost":
			// Deleted between listing and fetch.
			json.NewEncoder(w).Encode(map[string]any{
				"ocs": map[string]any{
					"meta": map[string]any{"status": "failure", "statuscode": 404, "message": "not found"},
				},
			})
		default:
			id := r.URL.Path[len("/ocs/v2.php/cloud/users/"):]
			json.NewEncoder(w).Encode(ocsOK(map[string]any{"id": id, "enabled": true}))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret")
	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "jdoe", accounts[0].ID)
	assert.Equal(t, "mmuster", accounts[1].ID)
}

func TestCreateAccountPostsAndFetches(t *testing.T) {
	var created map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			json.NewEncoder(w).Encode(ocsOK(map[string]any{"id": "jdoe"}))
			return
		}
		assert.Equal(t, "/ocs/v2.php/cloud/users/jdoe", r.URL.Path)
		json.NewEncoder(w).Encode(ocsOK(map[string]any{
			"id":          "jdoe",
			"displayname": "Jane Doe",
			"email":       "jane@example.org",
			"enabled":     true,
		}))
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret")
	account, err := c.CreateAccount(context.Background(), record.AccountRequest{
		Username:  "jdoe",
		Email:     "jane@example.org",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", account.ID)
	assert.Equal(t, "jdoe", created["userid"])
	assert.Equal(t, "jane@example.org", created["email"])
	assert.Equal(t, "Jane Doe", created["displayName"])
}

func TestCreateAccountRequiresUsernameAndEmail(t *testing.T) {
	c := New("http://unused", "admin", "secret")
	_, err := c.CreateAccount(context.Background(), record.AccountRequest{Email: "jane@example.org"})
	assert.True(t, engine.IsValidation(err))
}

func TestEnvelopeFailureMapsToTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with a failing meta block.
		json.NewEncoder(w).Encode(map[string]any{
			"ocs": map[string]any{
				"meta": map[string]any{"status": "failure", "statuscode": 102, "message": "username already exists"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret")
	_, err := c.GetAccount(context.Background(), "jdoe")
	require.Error(t, err)
	assert.True(t, engine.IsRemoteUnavailable(err))
	assert.Contains(t, err.Error(), "username already exists")
}

func TestHTTPNotFoundMapsToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret")
	_, err := c.GetAccount(context.Background(), "nobody")
	assert.True(t, engine.IsNotFound(err))
}
