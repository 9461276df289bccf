package couch

// Mango selector helpers for the queries the passes need.

// SelectorMissingWorkflow matches documents without a work item link.
func SelectorMissingWorkflow() map[string]any {
	return map[string]any{
		"workflow": map[string]any{"$exists": false},
	}
}

// SelectorByWorkflowID matches documents linked to a work item.
func SelectorByWorkflowID(id int) map[string]any {
	return map[string]any{
		"workflow.id": map[string]any{"$eq": id},
	}
}

// SelectorByEmail matches documents with a specific email.
func SelectorByEmail(email string) map[string]any {
	return map[string]any{
		"email": map[string]any{"$eq": email},
	}
}

// SelectorByDirectoryID matches documents carrying a directory account
// snapshot with the given account id.
func SelectorByDirectoryID(id string) map[string]any {
	return map[string]any{
		"account_a.id": map[string]any{"$eq": id},
	}
}

// SelectorByTrackerID matches documents carrying a tracker account
// snapshot with the given account id.
func SelectorByTrackerID(id string) map[string]any {
	return map[string]any{
		"account_b.id": map[string]any{"$eq": id},
	}
}
