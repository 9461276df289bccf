// Package record defines the typed data model shared by the three
// collaborator systems: the document-store Person, the workflow-tracker
// WorkItem, and the directory-service AccountProfile.
//
// The package also owns the explicit field-mapping table between the
// document and tracker schemas (see IdentityFields) and the workflow
// status vocabulary. Keeping the mapping here, as code, replaces the
// string-keyed custom-field lookups the remote tracker exposes with a
// schema that is checked at compile time.
package record
