package httpapi

import (
	"net/http"
	"strings"

	"grow104.org/internal/apperr"
	"grow104.org/internal/audit"
	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
	"grow104.org/internal/validate"
)

func (a *API) handleInvitationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listInvitations(w, r)
	case http.MethodPost:
		a.createInvitation(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleInvitationResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/invitations/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Invitation not found"))
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	switch action {
	case "accept":
		a.decideInvitation(w, r, id, garden.InvitationAccepted)
	case "reject":
		a.decideInvitation(w, r, id, garden.InvitationRejected)
	default:
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Resource not found"))
	}
}

func (a *API) createInvitation(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.InvitationCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	gardenID := values.String("gardenId")
	userID := values.String("userId")
	role, _ := auth.ParseRole(values.String("role"))

	g, err := a.store.Gardens().FindByID(r.Context(), gardenID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	// Only the garden's owner or an admin can invite into it.
	if p.Role != auth.RoleAdmin && g.OwnerID != p.ID {
		writeErr(w, r, auth.ErrForbidden)
		return
	}
	invitee, err := a.store.Users().FindByID(r.Context(), userID)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	member, err := a.isMember(r, userID, gardenID, role)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if member {
		writeErr(w, r, apperr.New(apperr.KindConflict, "User is already a member of this garden"))
		return
	}

	inv := &garden.Invitation{
		GardenID:  gardenID,
		UserID:    userID,
		InvitedBy: p.ID,
		Role:      role,
	}
	// A second pending invitation for the same pair trips the partial
	// unique index and comes back as CONFLICT.
	if err := a.store.Invitations().Create(r.Context(), inv); err != nil {
		writeErr(w, r, err)
		return
	}
	a.notify.Notify(r.Context(), invitee.ID,
		"Garden invitation",
		"You have been invited to join "+g.Name+" as "+string(role),
		"invitation")
	_ = audit.LogEvent(r.Context(), "invitation.create", map[string]any{
		"invitation_id": inv.ID,
		"garden_id":     gardenID,
		"invitee_id":    userID,
	})
	writeData(w, http.StatusCreated, inv, "Invitation sent")
}

func (a *API) listInvitations(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	filter := garden.InvitationFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if p.Role != auth.RoleAdmin {
		filter.UserID = p.ID
	}
	items, err := a.store.Invitations().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if items == nil {
		items = []*garden.Invitation{}
	}
	writeData(w, http.StatusOK, items, "")
}

// decideInvitation lets the invitee accept or reject a pending
// invitation. Accepting creates the membership matching the invited
// role.
func (a *API) decideInvitation(w http.ResponseWriter, r *http.Request, id, status string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	inv, err := a.store.Invitations().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if inv.UserID != p.ID {
		writeErr(w, r, auth.ErrForbidden)
		return
	}
	if inv.Status != garden.InvitationPending {
		writeErr(w, r, apperr.New(apperr.KindConflict, "Invitation has already been decided"))
		return
	}

	if status == garden.InvitationAccepted {
		var joinErr error
		switch inv.Role {
		case auth.RoleGardener:
			joinErr = a.store.Memberships().AddGardener(r.Context(), inv.GardenID, p.ID)
		default:
			joinErr = a.store.Memberships().AddVolunteer(r.Context(), inv.GardenID, p.ID)
		}
		if joinErr != nil && apperr.KindOf(joinErr) != apperr.KindConflict {
			writeErr(w, r, joinErr)
			return
		}
	}

	updated, err := a.store.Invitations().SetStatus(r.Context(), id, status)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	a.notify.Notify(r.Context(), inv.InvitedBy,
		"Invitation "+status,
		p.Email+" "+status+" your garden invitation",
		"invitation")
	writeData(w, http.StatusOK, updated, "Invitation "+status)
}

func (a *API) isMember(r *http.Request, userID, gardenID string, role auth.Role) (bool, error) {
	if role == auth.RoleGardener {
		return a.store.Memberships().IsGardener(r.Context(), userID, gardenID)
	}
	return a.store.Memberships().IsVolunteer(r.Context(), userID, gardenID)
}
