package rbac

import "strings"

// Checker evaluates a role-to-permissions matrix. Permissions are
// "resource:verb" strings; a trailing "*" in a granted permission matches
// any verb under that prefix, and a bare "*" grants everything (the admin
// role).
type Checker struct {
	rolePermissions map[string][]string
}

// NewChecker builds a Checker over the given matrix, defaulting to the
// package's RolePermissions when nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{rolePermissions: rp}
}

// Has reports whether the role is granted the permission.
func (c *Checker) Has(role, perm string) bool {
	for _, granted := range c.rolePermissions[role] {
		if matchPerm(granted, perm) {
			return true
		}
	}
	return false
}

// Any reports whether the role holds at least one of the permissions.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func matchPerm(granted, perm string) bool {
	if granted == "*" || granted == perm {
		return true
	}
	if strings.HasSuffix(granted, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(granted, "*"))
	}
	return false
}
