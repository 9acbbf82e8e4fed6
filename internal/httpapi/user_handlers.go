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

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.listUsers(w, r)
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if rest != "profile" {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Resource not found"))
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	a.updateProfile(w, r)
}

// listUsers is admin-only; active accounts, newest first.
func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := auth.RequireAdmin(p); err != nil {
		writeErr(w, r, err)
		return
	}
	filter := garden.UserFilter{
		Role: strings.TrimSpace(r.URL.Query().Get("role")),
	}
	users, err := a.store.Users().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if users == nil {
		users = []*garden.User{}
	}
	writeData(w, http.StatusOK, users, "")
}

// updateProfile edits the caller's own account. Email, role and
// password are out of reach here.
func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
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
	values, err := validate.Apply(validate.ProfileUpdate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	var patch garden.ProfilePatch
	if values.Has("name") {
		v := values.String("name")
		patch.Name = &v
	}
	if values.Has("phone") {
		v := values.String("phone")
		patch.Phone = &v
	}
	if values.Has("zipcode") {
		v := values.String("zipcode")
		patch.Zipcode = &v
	}
	if values.Has("address") {
		v := values.String("address")
		patch.Address = &v
	}

	user, err := a.store.Users().UpdateProfile(r.Context(), p.ID, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.update_profile", map[string]any{
		"user_id": user.ID,
	})
	writeData(w, http.StatusOK, user, "Profile updated")
}
