package auth

import "context"

// Owned is implemented by resources that record their author
type Owned interface {
	OwnerID() int64
}

// AssertOwner fails with ErrForbidden unless current authored the resource.
// Ownership is decided by primary key only.
func AssertOwner(resource Owned, current *Identity) error {
	if current == nil {
		return ErrAuthenticationRequired
	}
	if resource == nil {
		return ErrResourceNotFound
	}
	if resource.OwnerID() != current.ID {
		return ErrForbidden
	}
	return nil
}

// AssertContextOwner runs AssertOwner against the identity bound to ctx
func AssertContextOwner(ctx context.Context, resource Owned) error {
	return AssertOwner(resource, CurrentIdentity(ctx))
}

// AssertRole fails with ErrForbidden unless current carries role
func AssertRole(current *Identity, role string) error {
	if current == nil {
		return ErrAuthenticationRequired
	}
	if !current.HasRole(role) {
		return ErrForbidden
	}
	return nil
}
