package auth

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"
)

// Role is a capability label attached to an Identity.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const identityKey = "auth_identity"

type identityContextKey struct{}

// Identity is the authenticated caller of a single request.
type Identity struct {
	SubjectID int64
	Roles     []Role
}

// IsGuest reports whether the identity is the guest sentinel.
func (i *Identity) IsGuest() bool {
	return i != nil && i.SubjectID == GuestSubjectID
}

// HasRole reports whether the identity carries role.
func (i *Identity) HasRole(role Role) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}

// HasAnyRole reports whether the identity carries at least one of roles.
func (i *Identity) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// newIdentity assigns labels: the guest sentinel gets exactly RoleGuest,
// everybody else RoleUser plus any extra non-guest roles.
func newIdentity(subjectID int64, extra []Role) *Identity {
	if subjectID == GuestSubjectID {
		return &Identity{SubjectID: subjectID, Roles: []Role{RoleGuest}}
	}
	roles := []Role{RoleUser}
	for _, role := range extra {
		if role == RoleGuest || slices.Contains(roles, role) {
			continue
		}
		roles = append(roles, role)
	}
	return &Identity{SubjectID: subjectID, Roles: roles}
}

func setIdentity(c *fiber.Ctx, identity *Identity) {
	c.Locals(identityKey, identity)
	c.SetUserContext(context.WithValue(c.UserContext(), identityContextKey{}, identity))
}

// IdentityFromCtx retrieves the identity established for the request.
func IdentityFromCtx(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok && identity != nil
}

// IdentityFromContext retrieves the identity from a request user context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok && identity != nil
}
