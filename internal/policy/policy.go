// Package policy resolves a user's relationship to a garden and the
// garden-scoped decisions that follow from it. It sits between the
// pure role checks in auth and the storage layer.
package policy

import (
	"context"

	"grow104.org/internal/apperr"
	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
)

// Relationship ranks how closely a user is tied to a garden. Stronger
// ties win when a user holds several at once.
type Relationship int

const (
	RelNone Relationship = iota
	RelVolunteer
	RelGardener
	RelOwner
)

func (r Relationship) String() string {
	switch r {
	case RelOwner:
		return "owner"
	case RelGardener:
		return "gardener"
	case RelVolunteer:
		return "volunteer"
	default:
		return "none"
	}
}

// Resolver answers garden-scoped authorization questions against the
// store.
type Resolver struct {
	store garden.Store
}

// NewResolver builds a Resolver over the given store.
func NewResolver(store garden.Store) *Resolver {
	return &Resolver{store: store}
}

// Relationship reports the strongest tie between a user and a garden.
func (r *Resolver) Relationship(ctx context.Context, userID, gardenID string) (Relationship, error) {
	g, err := r.store.Gardens().FindByID(ctx, gardenID)
	if err != nil {
		return RelNone, err
	}
	if g.OwnerID == userID {
		return RelOwner, nil
	}
	isGardener, err := r.store.Memberships().IsGardener(ctx, userID, gardenID)
	if err != nil {
		return RelNone, err
	}
	if isGardener {
		return RelGardener, nil
	}
	isVolunteer, err := r.store.Memberships().IsVolunteer(ctx, userID, gardenID)
	if err != nil {
		return RelNone, err
	}
	if isVolunteer {
		return RelVolunteer, nil
	}
	return RelNone, nil
}

// CanManage reports whether the principal may manage resources scoped
// to the garden. Admins always can; otherwise the principal must be
// the garden's owner or an assigned gardener.
func (r *Resolver) CanManage(ctx context.Context, p auth.Principal, gardenID string) (bool, error) {
	if p.Role == auth.RoleAdmin {
		return true, nil
	}
	if p.Role != auth.RoleGardener {
		return false, nil
	}
	rel, err := r.Relationship(ctx, p.ID, gardenID)
	if err != nil {
		return false, err
	}
	return rel >= RelGardener, nil
}

// RequireManage is CanManage with the failure turned into the standard
// forbidden error.
func (r *Resolver) RequireManage(ctx context.Context, p auth.Principal, gardenID string) error {
	ok, err := r.CanManage(ctx, p, gardenID)
	if err != nil {
		return err
	}
	if !ok {
		return auth.ErrForbidden
	}
	return nil
}

// ResolveGardenID fills in the garden a gardener's request applies to
// when the caller did not name one. A gardener assigned to exactly one
// garden gets that garden; zero assignments is a client error, and
// more than one demands an explicit choice.
func (r *Resolver) ResolveGardenID(ctx context.Context, p auth.Principal, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p.Role != auth.RoleGardener {
		return "", apperr.Validation([]apperr.Violation{
			{Field: "gardenId", Message: "gardenId is required"},
		})
	}
	ids, err := r.store.Memberships().GardenIDsForGardener(ctx, p.ID)
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", apperr.New(apperr.KindNoGardenAssignment, "You are not assigned to any garden")
	case 1:
		return ids[0], nil
	default:
		return "", apperr.Validation([]apperr.Violation{
			{Field: "gardenId", Message: "gardenId is required when assigned to multiple gardens"},
		})
	}
}
