// Package merge implements the one-directional field copy between the
// Person document and the Work Item custom fields.
//
// The copy is driven by the record.IdentityFields mapping table. Absent
// source values never overwrite existing target values, and name fields
// are capitalized on write. Both entry points report whether anything
// changed so callers can skip no-op saves.
package merge

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rawdlite/onboardsync/internal/record"
)

// titler upper-cases the first letter of each word and leaves the rest
// alone, so already-correct forms like "McDonald" survive untouched.
var titler = cases.Title(language.Und, cases.NoLower)

// Capitalize returns s in capitalized form.
func Capitalize(s string) string {
	return titler.String(s)
}

// ApplyToPerson copies work item fields onto the person document.
func ApplyToPerson(dst *record.Person, src *record.WorkItem, fields []record.Field) (changed bool) {
	for _, f := range fields {
		v := f.FromWorkItem(src)
		if v == "" {
			continue
		}
		if f.Title {
			v = Capitalize(v)
		}
		// Exact comparison against the capitalized form; a blind
		// re-write would produce needless saves.
		if f.FromPerson(dst) == v {
			continue
		}
		f.SetPerson(dst, v)
		changed = true
	}
	return changed
}

// ApplyToWorkItem copies person fields onto the work item.
func ApplyToWorkItem(dst *record.WorkItem, src *record.Person, fields []record.Field) (changed bool) {
	for _, f := range fields {
		v := f.FromPerson(src)
		if v == "" {
			continue
		}
		if f.Title {
			v = Capitalize(v)
		}
		if f.FromWorkItem(dst) == v {
			continue
		}
		f.SetWorkItem(dst, v)
		changed = true
	}
	return changed
}
