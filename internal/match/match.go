// Package match implements the identity match predicate chain.
//
// Predicates run in a fixed priority order over every candidate. All
// predicates are evaluated and their hits collected, so one person found
// by several predicates is a single match, while different persons found
// by different predicates are correctly reported as ambiguous instead of
// silently resolving to whichever predicate ran first.
package match

import (
	"strconv"
	"strings"

	"github.com/rawdlite/onboardsync/internal/record"
)

// Kind classifies a match outcome.
type Kind int

const (
	// NoMatch means no predicate matched any candidate.
	NoMatch Kind = iota
	// OneMatch means exactly one distinct candidate matched.
	OneMatch
	// Ambiguous means two or more distinct candidates matched.
	Ambiguous
)

// String returns the outcome name for logs and comments.
func (k Kind) String() string {
	switch k {
	case OneMatch:
		return "one"
	case Ambiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// Source identifies which external system assigned the target's id, so
// the assigned-id predicate knows which recorded id to compare against.
type Source int

const (
	// SourceNone disables the assigned-id predicate.
	SourceNone Source = iota
	// SourceWorkflow compares against the person's work item link.
	SourceWorkflow
	// SourceDirectory compares against the directory account snapshot.
	SourceDirectory
	// SourceTracker compares against the tracker account snapshot.
	SourceTracker
)

// Target carries the identity attributes to match candidates against.
// Empty fields disable their predicate: a blank target value never
// matches a blank candidate value.
type Target struct {
	Source     Source
	AssignedID string

	// Key is the document identifier or work item subject.
	Key       string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// Result is the outcome of running the chain.
type Result struct {
	Kind   Kind
	Person *record.Person

	// Matches lists every distinct matching candidate in candidate
	// order. Populated for OneMatch and Ambiguous.
	Matches []*record.Person

	// Predicate names the highest-priority predicate that produced a
	// hit, for diagnostics.
	Predicate string
}

// predicate pairs a name with its candidate test. Order in predicates is
// the priority order.
type predicate struct {
	name string
	hit  func(t Target, c *record.Person) bool
}

var predicates = []predicate{
	{name: "assigned-id", hit: hitAssignedID},
	{name: "identifier", hit: hitIdentifier},
	{name: "username", hit: hitUsername},
	{name: "email", hit: hitEmail},
	{name: "name", hit: hitName},
}

// Find runs the predicate chain over candidates and classifies the
// distinct hits as NoMatch, OneMatch or Ambiguous.
func Find(candidates []*record.Person, target Target) Result {
	var (
		matches   []*record.Person
		seen      = map[string]bool{}
		firstPred string
	)

	for _, pred := range predicates {
		for _, c := range candidates {
			if c == nil || !pred.hit(target, c) {
				continue
			}
			if firstPred == "" {
				firstPred = pred.name
			}
			key := c.CanonicalID()
			if seen[key] {
				continue
			}
			seen[key] = true
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return Result{Kind: NoMatch}
	case 1:
		return Result{Kind: OneMatch, Person: matches[0], Matches: matches, Predicate: firstPred}
	default:
		// Re-establish candidate order: hits were collected in
		// predicate order, but ambiguity reports should be stable
		// with respect to the input.
		ordered := make([]*record.Person, 0, len(matches))
		for _, c := range candidates {
			if c != nil && seen[c.CanonicalID()] {
				ordered = append(ordered, c)
				seen[c.CanonicalID()] = false
			}
		}
		return Result{Kind: Ambiguous, Matches: ordered, Predicate: firstPred}
	}
}

func hitAssignedID(t Target, c *record.Person) bool {
	if t.AssignedID == "" {
		return false
	}
	return t.AssignedID == assignedID(t.Source, c)
}

// assignedID returns the id the target's source system previously
// recorded on the candidate, or "" when none is recorded.
func assignedID(src Source, c *record.Person) string {
	switch src {
	case SourceWorkflow:
		if c.Workflow == nil || c.Workflow.ID == 0 {
			return ""
		}
		return strconv.Itoa(c.Workflow.ID)
	case SourceDirectory:
		if c.DirectoryAccount == nil {
			return ""
		}
		return c.DirectoryAccount.ID
	case SourceTracker:
		if c.TrackerAccount == nil {
			return ""
		}
		return c.TrackerAccount.ID
	default:
		return ""
	}
}

func hitIdentifier(t Target, c *record.Person) bool {
	return t.Key != "" && strings.EqualFold(t.Key, c.ID)
}

func hitUsername(t Target, c *record.Person) bool {
	return t.Username != "" && strings.EqualFold(t.Username, c.Username)
}

func hitEmail(t Target, c *record.Person) bool {
	return t.Email != "" && t.Email == c.Email
}

func hitName(t Target, c *record.Person) bool {
	if t.FirstName == "" || t.LastName == "" {
		return false
	}
	return strings.EqualFold(t.FirstName, c.FirstName) && strings.EqualFold(t.LastName, c.LastName)
}
