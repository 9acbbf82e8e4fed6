package auth

// Role is one of exactly three account roles. Unknown roles are
// rejected at signup time, never at authorization time.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleGardener  Role = "Gardener"
	RoleVolunteer Role = "Volunteer"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleGardener, RoleVolunteer:
		return Role(raw), true
	}
	return "", false
}

// Principal is the authenticated actor derived from a verified access
// token. It is never persisted by this layer.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
