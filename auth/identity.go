package auth

import (
	"errors"
	"sort"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/models"

	"gorm.io/gorm"
)

// PermissionSet is a deduplicated set of permission names.
type PermissionSet map[string]struct{}

// Has reports membership of a permission name.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order, for responses and logs.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Principal is a read-only projection of an authenticated user carrying
// its resolved permission set. It is built once per request and never
// mutated afterwards.
type Principal struct {
	ID          uint
	Username    string
	Email       string
	Permissions PermissionSet
}

// IdentityResolver turns verified claims into a Principal backed by
// the credential store.
type IdentityResolver struct {
	db *gorm.DB
}

func NewIdentityResolver(db *gorm.DB) *IdentityResolver {
	return &IdentityResolver{db: db}
}

// Resolve looks up the subject of verified claims and aggregates its
// permissions. A subject that no longer exists yields
// ErrUnknownPrincipal; issued tokens do not outlive their account.
func (r *IdentityResolver) Resolve(claims *Claims) (*Principal, error) {
	var user models.User
	err := r.db.Preload("Roles.Permissions").Where("username = ?", claims.Subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownPrincipal
		}
		return nil, apperrors.Internal(err)
	}

	return &Principal{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Permissions: PermissionSetOf(&user),
	}, nil
}

// PermissionSetOf unions the permission names across all of a user's
// roles. Duplicates collapse by name; role order has no effect on the
// result.
func PermissionSetOf(user *models.User) PermissionSet {
	set := make(PermissionSet)
	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			set[perm.Name] = struct{}{}
		}
	}
	return set
}
