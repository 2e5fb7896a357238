package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated session identity. Role is assigned once when the
// identity token is verified.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the principal holds the administrative role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
