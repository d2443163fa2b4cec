package kernel

import (
	"fmt"

	"hako/internal/pkg/errs"
)

// Role is the privilege level of the actor behind a request.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts "user" and "admin".
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

func (r Role) Validate() error {
	if r != RoleUser && r != RoleAdmin {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a role", string(r)))
	}
	return nil
}

// IsElevated reports whether the role may bypass user-level restrictions.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
