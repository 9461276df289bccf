package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawdlite/onboardsync/internal/record"
)

func TestApplyToPerson_CopiesPresentFields(t *testing.T) {
	p := &record.Person{FirstName: "Jane"}
	w := &record.WorkItem{FirstName: "jane", LastName: "doe", Email: "jane@x.org", Telephone: "555-1234"}

	changed := ApplyToPerson(p, w, record.IdentityFields())

	assert.True(t, changed)
	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Equal(t, "jane@x.org", p.Email)
	assert.Equal(t, "555-1234", p.Telephone)
}

func TestApplyToPerson_EmptySourceNeverClobbers(t *testing.T) {
	p := &record.Person{
		FirstName: "Jane", LastName: "Doe", Username: "jdoe",
		Email: "jane@x.org", Telephone: "555", Git: "jdoe", PublicKey: "ssh-ed25519 AAA",
	}
	before := *p

	changed := ApplyToPerson(p, &record.WorkItem{}, record.IdentityFields())

	assert.False(t, changed)
	assert.Equal(t, before, *p)
}

func TestApplyToPerson_NamesAreCapitalized(t *testing.T) {
	p := &record.Person{}
	w := &record.WorkItem{FirstName: "jörg", LastName: "von neumann"}

	ApplyToPerson(p, w, record.IdentityFields())

	assert.Equal(t, "Jörg", p.FirstName)
	assert.Equal(t, "Von Neumann", p.LastName)
}

func TestApplyToPerson_NoWriteWhenAlreadyCapitalized(t *testing.T) {
	p := &record.Person{FirstName: "Jane", LastName: "McDonald", Email: "jane@x.org"}
	w := &record.WorkItem{FirstName: "jane", LastName: "McDonald", Email: "jane@x.org"}

	changed := ApplyToPerson(p, w, record.IdentityFields())

	assert.False(t, changed)
}

func TestApplyToWorkItem_CopiesAndReportsChange(t *testing.T) {
	p := &record.Person{Username: "jdoe", Email: "jane@x.org", FirstName: "jane"}
	w := &record.WorkItem{Email: "jane@x.org"}

	changed := ApplyToWorkItem(w, p, record.IdentityFields())

	assert.True(t, changed)
	assert.Equal(t, "jdoe", w.Username)
	assert.Equal(t, "Jane", w.FirstName)

	// A second application is a no-op.
	assert.False(t, ApplyToWorkItem(w, p, record.IdentityFields()))
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane", "Jane"},
		{"McDonald", "McDonald"},
		{"von neumann", "Von Neumann"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Capitalize(tt.in), "input %q", tt.in)
	}
}
