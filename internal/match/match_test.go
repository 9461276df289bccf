package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawdlite/onboardsync/internal/record"
)

func person(id, username, email, first, last string) *record.Person {
	return &record.Person{ID: id, Username: username, Email: email, FirstName: first, LastName: last}
}

func TestFind_NoMatch(t *testing.T) {
	candidates := []*record.Person{
		person("jane.doe", "jdoe", "jane@x.org", "Jane", "Doe"),
	}

	res := Find(candidates, Target{Username: "msmith", Email: "mark@x.org", FirstName: "Mark", LastName: "Smith"})

	assert.Equal(t, NoMatch, res.Kind)
	assert.Nil(t, res.Person)
	assert.Empty(t, res.Matches)
}

func TestFind_OneMatchByUsername(t *testing.T) {
	jane := person("jane.doe", "jdoe", "jane@x.org", "Jane", "Doe")
	candidates := []*record.Person{
		person("mark.smith", "msmith", "mark@x.org", "Mark", "Smith"),
		jane,
	}

	res := Find(candidates, Target{Username: "JDoe"})

	require.Equal(t, OneMatch, res.Kind)
	assert.Same(t, jane, res.Person)
	assert.Equal(t, "username", res.Predicate)
}

func TestFind_AssignedIDHasPriority(t *testing.T) {
	linked := person("jane.doe", "jdoe", "jane@x.org", "Jane", "Doe")
	linked.Workflow = &record.WorkflowLink{ID: 42}
	candidates := []*record.Person{
		person("other", "other", "other@x.org", "Other", "Person"),
		linked,
	}

	res := Find(candidates, Target{Source: SourceWorkflow, AssignedID: "42", Email: "jane@x.org"})

	require.Equal(t, OneMatch, res.Kind)
	assert.Same(t, linked, res.Person)
	assert.Equal(t, "assigned-id", res.Predicate)
}

func TestFind_IdentifierIsCaseInsensitive(t *testing.T) {
	jane := person("Jane.Doe", "", "", "", "")
	res := Find([]*record.Person{jane}, Target{Key: "jane.doe"})

	require.Equal(t, OneMatch, res.Kind)
	assert.Equal(t, "identifier", res.Predicate)
}

func TestFind_EmailIsExact(t *testing.T) {
	jane := person("jane.doe", "", "Jane@X.org", "", "")

	res := Find([]*record.Person{jane}, Target{Email: "jane@x.org"})

	assert.Equal(t, NoMatch, res.Kind)
}

func TestFind_BlankNeverMatchesBlank(t *testing.T) {
	blank := person("nameless", "", "", "", "")

	res := Find([]*record.Person{blank}, Target{})
	assert.Equal(t, NoMatch, res.Kind)

	// Name predicate needs both halves on the target side.
	res = Find([]*record.Person{person("d", "", "", "Jane", "")}, Target{FirstName: "Jane"})
	assert.Equal(t, NoMatch, res.Kind)
}

func TestFind_SamePersonHitByManyPredicatesIsOneMatch(t *testing.T) {
	jane := person("jane.doe", "jdoe", "jane@x.org", "Jane", "Doe")

	res := Find([]*record.Person{jane}, Target{
		Key:       "JANE.DOE",
		Username:  "jdoe",
		Email:     "jane@x.org",
		FirstName: "jane",
		LastName:  "doe",
	})

	require.Equal(t, OneMatch, res.Kind)
	assert.Same(t, jane, res.Person)
	assert.Equal(t, "identifier", res.Predicate)
}

func TestFind_DistinctHitsAcrossPredicatesAreAmbiguous(t *testing.T) {
	// Two different documents share an email by data error; a third is
	// found by username only. The chain must not stop at the first hit.
	a := person("jane.doe", "jdoe", "shared@x.org", "Jane", "Doe")
	b := person("jane.d", "janed", "shared@x.org", "Jane", "D")
	candidates := []*record.Person{a, b}

	res := Find(candidates, Target{Username: "jdoe", Email: "shared@x.org"})

	require.Equal(t, Ambiguous, res.Kind)
	assert.Nil(t, res.Person)
	// Candidate order, not predicate-hit order.
	require.Len(t, res.Matches, 2)
	assert.Same(t, a, res.Matches[0])
	assert.Same(t, b, res.Matches[1])
	assert.Equal(t, "username", res.Predicate)
}

func TestFind_DeterministicAmongEqualCandidates(t *testing.T) {
	a := person("a", "", "dup@x.org", "", "")
	b := person("b", "", "dup@x.org", "", "")

	forward := Find([]*record.Person{a, b}, Target{Email: "dup@x.org"})
	reversed := Find([]*record.Person{b, a}, Target{Email: "dup@x.org"})

	assert.Equal(t, Ambiguous, forward.Kind)
	assert.Equal(t, Ambiguous, reversed.Kind)
	assert.Same(t, a, forward.Matches[0])
	assert.Same(t, b, reversed.Matches[0])
}

func TestFind_NilCandidatesIgnored(t *testing.T) {
	jane := person("jane.doe", "jdoe", "", "", "")
	res := Find([]*record.Person{nil, jane, nil}, Target{Username: "jdoe"})

	require.Equal(t, OneMatch, res.Kind)
	assert.Same(t, jane, res.Person)
}
