package httpapi

import (
	"context"
	"net/http"
	"strings"

	"grow104.org/internal/apperr"
	"grow104.org/internal/garden"
)

// memberView is the user summary embedded in garden responses. It
// never carries contact details beyond what members already see of
// each other.
type memberView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsOnline bool   `json:"isOnline"`
}

type gardenSummary struct {
	*garden.Garden
	Owner         *memberView `json:"owner,omitempty"`
	GardenerCount int         `json:"gardenerCount"`
}

type gardenDetail struct {
	*garden.Garden
	Owner      *memberView  `json:"owner,omitempty"`
	Gardeners  []memberView `json:"gardeners"`
	Volunteers []memberView `json:"volunteers"`
}

func (a *API) handleGardensCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.listGardens(w, r)
}

func (a *API) handleGardenResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/gardens/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Garden not found"))
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	a.getGarden(w, r, id)
}

// listGardens returns every active garden with its owner and gardener
// count. Full member rosters are on the single-garden endpoint.
func (a *API) listGardens(w http.ResponseWriter, r *http.Request) {
	gardens, err := a.store.Gardens().List(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	out := make([]gardenSummary, 0, len(gardens))
	for _, g := range gardens {
		owner, err := a.summarizeUser(r, g.OwnerID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		count, err := a.store.Memberships().CountGardeners(r.Context(), g.ID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		out = append(out, gardenSummary{Garden: g, Owner: owner, GardenerCount: count})
	}
	writeData(w, http.StatusOK, out, "")
}

func (a *API) getGarden(w http.ResponseWriter, r *http.Request, id string) {
	g, err := a.store.Gardens().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	owner, err := a.summarizeUser(r, g.OwnerID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	gardeners, err := a.summarizeMembers(r, a.store.Memberships().GardenerIDs, g.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	volunteers, err := a.summarizeMembers(r, a.store.Memberships().VolunteerIDs, g.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, gardenDetail{
		Garden:     g,
		Owner:      owner,
		Gardeners:  gardeners,
		Volunteers: volunteers,
	}, "")
}

func (a *API) summarizeUser(r *http.Request, userID string) (*memberView, error) {
	u, err := a.store.Users().FindByID(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return &memberView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		IsOnline: u.IsOnline,
	}, nil
}

func (a *API) summarizeMembers(r *http.Request, lookup func(context.Context, string) ([]string, error), gardenID string) ([]memberView, error) {
	ids, err := lookup(r.Context(), gardenID)
	if err != nil {
		return nil, err
	}
	out := make([]memberView, 0, len(ids))
	for _, id := range ids {
		v, err := a.summarizeUser(r, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
