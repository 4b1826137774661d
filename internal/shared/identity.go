// Package shared holds cross-cutting types used by the auth, rbac and
// page layers.
package shared

// Role is a label attached to an identity at login time.
type Role struct {
	Name        string `json:"role_name"`
	Description string `json:"description,omitempty"`
}

// Identity is the signed-in principal: backend username, display name,
// the credential pair handed out at login and the attached roles.
// SessionID is minted at login and only used to correlate log lines.
type Identity struct {
	User      string `json:"user"`
	FullName  string `json:"full_name"`
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	UserType  string `json:"user_type,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Roles     []Role `json:"roles,omitempty"`
}

// HasRole reports direct role membership.
func (id *Identity) HasRole(name string) bool {
	if id == nil {
		return false
	}
	for _, r := range id.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the identity's role labels in order.
func (id *Identity) RoleNames() []string {
	if id == nil {
		return nil
	}
	names := make([]string, 0, len(id.Roles))
	for _, r := range id.Roles {
		names = append(names, r.Name)
	}
	return names
}

// FlashMessage is a one-time notification carried in the session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
