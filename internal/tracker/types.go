package tracker

import (
	"encoding/json"
	"fmt"

	"github.com/rawdlite/onboardsync/internal/engine"
	"github.com/rawdlite/onboardsync/internal/record"
)

// FieldMapping names the tracker custom-field keys that carry the
// identity fields. The keys are instance-specific (customField<N>), so
// deployments override them from configuration.
type FieldMapping struct {
	FirstName      string
	LastName       string
	Username       string
	Email          string
	Telephone      string
	Git            string
	PublicKey      string
	WantsDirectory string
	WantsTracker   string
}

// DefaultFieldMapping matches the reference tracker project layout.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		FirstName:      "customField1",
		LastName:       "customField2",
		Username:       "customField3",
		Email:          "customField4",
		Telephone:      "customField5",
		Git:            "customField6",
		PublicKey:      "customField7",
		WantsDirectory: "customField8",
		WantsTracker:   "customField9",
	}
}

type halLink struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// page is the envelope of a paginated collection response.
type page struct {
	Total    int `json:"total"`
	Count    int `json:"count"`
	Embedded struct {
		Elements []json.RawMessage `json:"elements"`
	} `json:"_embedded"`
	Links struct {
		NextByOffset *halLink `json:"nextByOffset"`
	} `json:"_links"`
}

// workPackage is the fixed part of a work package payload; the identity
// custom fields are decoded separately through the FieldMapping.
type workPackage struct {
	ID          int    `json:"id"`
	Subject     string `json:"subject"`
	LockVersion int    `json:"lockVersion"`
	Links       struct {
		Status halLink `json:"status"`
	} `json:"_links"`
}

// decodeWorkPackage turns a raw work package payload into a WorkItem.
func decodeWorkPackage(data []byte, fm FieldMapping) (*record.WorkItem, error) {
	var wp workPackage
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, engine.WrapError(engine.ErrCodeValidation, System, err, "decode work package")
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, engine.WrapError(engine.ErrCodeValidation, System, err, "decode work package fields")
	}

	wi := &record.WorkItem{
		ID:             wp.ID,
		Subject:        wp.Subject,
		Status:         record.Status(wp.Links.Status.Title),
		LockVersion:    wp.LockVersion,
		FirstName:      stringField(raw, fm.FirstName),
		LastName:       stringField(raw, fm.LastName),
		Username:       stringField(raw, fm.Username),
		Email:          stringField(raw, fm.Email),
		Telephone:      stringField(raw, fm.Telephone),
		Git:            stringField(raw, fm.Git),
		PublicKey:      stringField(raw, fm.PublicKey),
		WantsDirectory: boolField(raw, fm.WantsDirectory),
		WantsTracker:   boolField(raw, fm.WantsTracker),
	}
	return wi, nil
}

// encodeWorkPackage builds the write payload for a work item. The
// status link is included only when statusID is non-zero; lockVersion is
// included only for updates (withLock).
func encodeWorkPackage(wi *record.WorkItem, fm FieldMapping, statusID int, withLock bool) map[string]any {
	body := map[string]any{
		"subject":         wi.Subject,
		fm.FirstName:      wi.FirstName,
		fm.LastName:       wi.LastName,
		fm.Username:       wi.Username,
		fm.Email:          wi.Email,
		fm.Telephone:      wi.Telephone,
		fm.Git:            wi.Git,
		fm.PublicKey:      wi.PublicKey,
		fm.WantsDirectory: wi.WantsDirectory,
		fm.WantsTracker:   wi.WantsTracker,
	}
	if withLock {
		body["lockVersion"] = wi.LockVersion
	}
	if statusID != 0 {
		body["_links"] = map[string]any{
			"status": map[string]any{
				"href": fmt.Sprintf("/api/v3/statuses/%d", statusID),
			},
		}
	}
	return body
}

// user is the tracker's user-account payload.
type user struct {
	ID        int    `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

// profile converts a tracker user to the shared account snapshot shape.
// The login doubles as the snapshot id: it is the stable handle the
// document store records.
func (u user) profile() *record.AccountProfile {
	return &record.AccountProfile{
		ID:          u.Login,
		DisplayName: u.Name,
		Email:       u.Email,
		Enabled:     u.Status == "active" || u.Status == "invited",
	}
}

// stringField and boolField tolerate absent or differently-typed custom
// field values; a missing field is simply empty.

func stringField(raw map[string]any, key string) string {
	if key == "" {
		return ""
	}
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func boolField(raw map[string]any, key string) bool {
	if key == "" {
		return false
	}
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1" || v == "yes"
	case float64:
		return v != 0
	default:
		return false
	}
}
