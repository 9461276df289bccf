package record

// AccountProfile is a snapshot of an account in the directory service or
// the tracker's own user registry. Snapshots are copied onto the Person
// document; there is no live foreign key back to the issuing service.
type AccountProfile struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayname,omitempty"`
	Email       string   `json:"email,omitempty"`
	Enabled     bool     `json:"enabled"`
	LastLogin   string   `json:"last_login,omitempty"`
	Quota       string   `json:"quota,omitempty"`
	Groups      []string `json:"groups,omitempty"`
}

// Clone returns a deep copy of the profile.
func (a *AccountProfile) Clone() *AccountProfile {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Groups != nil {
		cp.Groups = append([]string(nil), a.Groups...)
	}
	return &cp
}

// Equal reports whether two snapshots carry the same data.
func (a *AccountProfile) Equal(b *AccountProfile) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.DisplayName != b.DisplayName || a.Email != b.Email ||
		a.Enabled != b.Enabled || a.LastLogin != b.LastLogin || a.Quota != b.Quota {
		return false
	}
	if len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Groups {
		if a.Groups[i] != b.Groups[i] {
			return false
		}
	}
	return true
}

// AccountRequest is the payload for creating a new account in either
// account-issuing service.
type AccountRequest struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}
