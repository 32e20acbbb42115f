package auth

import "slices"

const (
	// RoleUser is granted to every account at signup
	RoleUser = "user"
	// RoleAdmin can manage shared resources such as tags
	RoleAdmin = "admin"
)

// Roles is the set of role names attached to an identity
type Roles []string

// Has checks if the role is part of the set
func (r Roles) Has(role string) bool {
	return slices.Contains(r, role)
}

// Normalize drops empty and duplicated entries keeping order.
// An empty set falls back to RoleUser.
func (r Roles) Normalize() Roles {
	out := make(Roles, 0, len(r))
	for _, role := range r {
		if role == "" || out.Has(role) {
			continue
		}
		out = append(out, role)
	}
	if len(out) == 0 {
		out = append(out, RoleUser)
	}
	return out
}
