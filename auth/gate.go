package auth

import "bookshelf-restful/apperrors"

// Guard is a reusable single-permission check over a resolved
// Principal.
type Guard func(p *Principal) error

// Require builds a Guard that passes iff the principal's resolved set
// contains permissionName. Boolean combinations are out of scope; a
// route depends on exactly one permission.
func Require(permissionName string) Guard {
	return func(p *Principal) error {
		if p == nil || !p.Permissions.Has(permissionName) {
			return apperrors.ErrForbidden
		}
		return nil
	}
}
