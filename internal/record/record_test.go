package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerson_JSONKeys(t *testing.T) {
	p := &Person{
		ID:        "jane.doe",
		Rev:       "3-abc",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.org",
		Workflow:  &WorkflowLink{ID: 42, Subject: "jane.doe"},
		DirectoryAccount: &AccountProfile{
			ID:      "jdoe",
			Enabled: true,
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	// Document-store key names, not Go field names.
	assert.Equal(t, "jane.doe", raw["_id"])
	assert.Equal(t, "3-abc", raw["_rev"])
	assert.Contains(t, raw, "workflow")
	assert.Contains(t, raw, "account_a")
	assert.NotContains(t, raw, "account_b")
}

func TestPerson_Linked(t *testing.T) {
	assert.False(t, (&Person{}).Linked())
	assert.False(t, (&Person{Workflow: &WorkflowLink{}}).Linked())
	assert.True(t, (&Person{Workflow: &WorkflowLink{ID: 7}}).Linked())
}

func TestPerson_CloneIsDeep(t *testing.T) {
	p := &Person{
		ID:               "jane.doe",
		Workflow:         &WorkflowLink{ID: 42},
		DirectoryAccount: &AccountProfile{ID: "jdoe", Groups: []string{"staff"}},
	}

	cp := p.Clone()
	cp.Workflow.ID = 99
	cp.DirectoryAccount.Groups[0] = "admin"

	assert.Equal(t, 42, p.Workflow.ID)
	assert.Equal(t, "staff", p.DirectoryAccount.Groups[0])
}

func TestAccountProfile_Equal(t *testing.T) {
	a := &AccountProfile{ID: "jdoe", Email: "jane@x.org", Enabled: true, Groups: []string{"staff"}}

	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(nil))
	assert.False(t, a.Equal(&AccountProfile{ID: "jdoe", Email: "jane@x.org", Enabled: false, Groups: []string{"staff"}}))
	assert.False(t, a.Equal(&AccountProfile{ID: "jdoe", Email: "jane@x.org", Enabled: true}))
}

func TestStatusTable_RoundTrip(t *testing.T) {
	table := DefaultStatusTable()

	for _, s := range StatusOrder {
		id, ok := table.ID(s)
		require.True(t, ok, "status %q has no id", s)

		back, ok := table.ByID(id)
		require.True(t, ok)
		assert.Equal(t, s, back)
	}
}

func TestStatus_Known(t *testing.T) {
	assert.True(t, StatusScheduled.Known())
	assert.True(t, StatusOnHold.Known())
	assert.False(t, Status("Being pondered").Known())
}

func TestIdentityFields_BothDirections(t *testing.T) {
	p := &Person{
		FirstName: "Jane", LastName: "Doe", Username: "jdoe",
		Email: "jane@x.org", Telephone: "123", Git: "jdoe", PublicKey: "ssh-ed25519 AAA",
	}

	// Copy every field person -> work item -> fresh person; nothing may
	// be lost or cross-wired along the way.
	w := &WorkItem{}
	for _, f := range IdentityFields() {
		f.SetWorkItem(w, f.FromPerson(p))
	}
	back := &Person{}
	for _, f := range IdentityFields() {
		f.SetPerson(back, f.FromWorkItem(w))
	}

	assert.Equal(t, p.FirstName, back.FirstName)
	assert.Equal(t, p.LastName, back.LastName)
	assert.Equal(t, p.Username, back.Username)
	assert.Equal(t, p.Email, back.Email)
	assert.Equal(t, p.Telephone, back.Telephone)
	assert.Equal(t, p.Git, back.Git)
	assert.Equal(t, p.PublicKey, back.PublicKey)
}

func TestIdentityFields_TitleOnlyOnNames(t *testing.T) {
	var titled []string
	for _, f := range IdentityFields() {
		if f.Title {
			titled = append(titled, f.Name)
		}
	}
	assert.Equal(t, []string{"firstname", "lastname"}, titled)
}
