package chat

// Registry tracks which connection, if any, currently holds the admin role.
// At most one admin exists process-wide; a new claim displaces the old one.
// Access is serialized by the Relay.
type Registry struct {
	adminID string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// SetAdmin unconditionally makes connID the current admin.
func (r *Registry) SetAdmin(connID string) {
	r.adminID = connID
}

// ClearAdmin clears the slot only when connID is still the current admin,
// so a stale disconnect cannot clear a newer admin's slot. Reports whether
// it cleared.
func (r *Registry) ClearAdmin(connID string) bool {
	if r.adminID != "" && r.adminID == connID {
		r.adminID = ""
		return true
	}
	return false
}

func (r *Registry) CurrentAdmin() (string, bool) {
	return r.adminID, r.adminID != ""
}
