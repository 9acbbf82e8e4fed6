package auth

import "grow104.org/internal/apperr"

// ErrForbidden is the single authorization failure surfaced by the rules.
var ErrForbidden = apperr.New(apperr.KindForbidden, "Insufficient permissions")

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(p Principal, allowed ...Role) error {
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// RequireAdmin permits admins only.
func RequireAdmin(p Principal) error {
	return RequireRole(p, RoleAdmin)
}

// RequireGardenerOrAdmin permits gardeners and admins.
func RequireGardenerOrAdmin(p Principal) error {
	return RequireRole(p, RoleAdmin, RoleGardener)
}

// ResourceOwnership carries the already-fetched fields of a resource
// that mutation checks decide on. Keeping the rule a pure function over
// plain values keeps it testable independent of storage.
type ResourceOwnership struct {
	// UserID is the resource's createdBy/ownerId/assignedTo value,
	// whichever field the resource type uses.
	UserID string
	// GardenOwnerID is the owner of the garden the resource belongs
	// to; empty for resources that are not garden-scoped.
	GardenOwnerID string
}

// CanMutate reports whether the principal may mutate the resource:
// admins always, the resource's own user always, and gardeners when
// they own the garden the resource belongs to.
func CanMutate(p Principal, res ResourceOwnership) bool {
	if p.Role == RoleAdmin {
		return true
	}
	if res.UserID != "" && res.UserID == p.ID {
		return true
	}
	if p.Role == RoleGardener && res.GardenOwnerID != "" && res.GardenOwnerID == p.ID {
		return true
	}
	return false
}

// RequireMutate is CanMutate with the failure mapped to ErrForbidden.
func RequireMutate(p Principal, res ResourceOwnership) error {
	if !CanMutate(p, res) {
		return ErrForbidden
	}
	return nil
}
