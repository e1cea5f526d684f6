package domain

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanOwnCart reports whether this role gets a server-side cart.
// Carts are a member-only concept; admin sessions never own one.
func (r Role) CanOwnCart() bool {
	return r == RoleMember
}

type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
