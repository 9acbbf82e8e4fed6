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

func (a *API) handleGardenerRequestsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listGardenerRequests(w, r)
	case http.MethodPost:
		a.createGardenerRequest(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGardenerRequestResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/gardener-requests/")
	if id == "" || strings.Contains(id, "/") {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Request not found"))
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	a.updateGardenerRequest(w, r, id)
}

func (a *API) createGardenerRequest(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := auth.RequireGardenerOrAdmin(p); err != nil {
		writeErr(w, r, err)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.GardenerRequestCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	req := &garden.GardenerRequest{
		RequesterID:    p.ID,
		Title:          values.String("title"),
		Description:    values.String("description"),
		RequestType:    values.String("requestType"),
		SupplyIDs:      values.Strings("supplyIds"),
		SeedlingIDs:    values.Strings("seedlingIds"),
		Season:         values.String("season"),
		AssistanceType: values.String("assistanceType"),
		Task:           values.String("task"),
		Notes:          values.String("notes"),
		Status:         values.String("status"),
	}
	if req.Status == "" {
		req.Status = garden.RequestStatusPending
	}
	if q, ok := values.Int("quantity"); ok {
		req.Quantity = &q
	}
	if h, ok := values.Int("householdSize"); ok {
		req.HouseholdSize = &h
	}
	if err := a.store.GardenerRequests().Create(r.Context(), req); err != nil {
		writeErr(w, r, err)
		return
	}
	a.notify.NotifyAdmins(r.Context(), p.ID,
		"New resource request",
		req.Title+" ("+req.RequestType+")",
		"request")
	_ = audit.LogEvent(r.Context(), "gardener_request.create", map[string]any{
		"request_id":   req.ID,
		"request_type": req.RequestType,
	})
	writeData(w, http.StatusCreated, req, "Request submitted")
}

func (a *API) listGardenerRequests(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := garden.GardenerRequestFilter{
		Status:      strings.TrimSpace(q.Get("status")),
		RequestType: strings.TrimSpace(q.Get("requestType")),
	}
	if p.Role != auth.RoleAdmin {
		filter.RequesterID = p.ID
	}
	items, err := a.store.GardenerRequests().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if items == nil {
		items = []*garden.GardenerRequest{}
	}
	writeData(w, http.StatusOK, items, "")
}

// updateGardenerRequest lets the requester edit an open request and
// admins decide it. Status transitions are admin-only.
func (a *API) updateGardenerRequest(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	req, err := a.store.GardenerRequests().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := auth.RequireMutate(p, auth.ResourceOwnership{UserID: req.RequesterID}); err != nil {
		writeErr(w, r, err)
		return
	}

	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.GardenerRequestUpdate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if values.Has("status") && p.Role != auth.RoleAdmin {
		writeErr(w, r, auth.ErrForbidden)
		return
	}

	var patch garden.GardenerRequestPatch
	if values.Has("title") {
		v := values.String("title")
		patch.Title = &v
	}
	if values.Has("description") {
		v := values.String("description")
		patch.Description = &v
	}
	if values.Has("requestType") {
		v := values.String("requestType")
		patch.RequestType = &v
	}
	if values.Has("status") {
		v := values.String("status")
		patch.Status = &v
	}
	if values.Has("notes") {
		v := values.String("notes")
		patch.Notes = &v
	}

	updated, err := a.store.GardenerRequests().Update(r.Context(), id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if patch.Status != nil {
		a.notify.Notify(r.Context(), updated.RequesterID,
			"Request "+*patch.Status,
			"Your request \""+updated.Title+"\" is now "+*patch.Status,
			"request")
	}
	writeData(w, http.StatusOK, updated, "Request updated")
}

func (a *API) handleVolunteerRequestsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listVolunteerRequests(w, r)
	case http.MethodPost:
		a.createVolunteerRequest(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleVolunteerRequestResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/volunteer-requests/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || action != "join" {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Resource not found"))
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	a.joinVolunteerRequest(w, r, id)
}

// createVolunteerRequest resolves the target garden for gardeners who
// omit gardenId: exactly one assignment resolves silently, zero is a
// client error, several demand an explicit choice.
func (a *API) createVolunteerRequest(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := auth.RequireGardenerOrAdmin(p); err != nil {
		writeErr(w, r, err)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.VolunteerRequestCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	gardenID, err := a.policy.ResolveGardenID(r.Context(), p, values.String("gardenId"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if _, err := a.store.Gardens().FindByID(r.Context(), gardenID); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.policy.RequireManage(r.Context(), p, gardenID); err != nil {
		writeErr(w, r, err)
		return
	}

	date, _ := values.Time("date")
	req := &garden.VolunteerRequest{
		GardenID:    gardenID,
		RequesterID: p.ID,
		Title:       values.String("title"),
		Description: values.String("description"),
		Date:        date,
		Status:      values.String("status"),
	}
	if req.Status == "" {
		req.Status = garden.VolunteerRequestOpen
	}
	if err := a.store.VolunteerRequests().Create(r.Context(), req); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, req, "Volunteer request created")
}

func (a *API) listVolunteerRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := garden.VolunteerRequestFilter{
		GardenID: strings.TrimSpace(q.Get("gardenId")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	items, err := a.store.VolunteerRequests().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if items == nil {
		items = []*garden.VolunteerRequest{}
	}
	writeData(w, http.StatusOK, items, "")
}

// joinVolunteerRequest signs the caller up for an open request, marks
// it filled, and tells the requester who is coming.
func (a *API) joinVolunteerRequest(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	req, err := a.store.VolunteerRequests().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if req.Status != garden.VolunteerRequestOpen {
		writeErr(w, r, apperr.New(apperr.KindConflict, "Request is no longer open"))
		return
	}
	if err := a.store.VolunteerRequests().Join(r.Context(), id, p.ID); err != nil {
		writeErr(w, r, err)
		return
	}
	updated, err := a.store.VolunteerRequests().Fill(r.Context(), id, p.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	a.notify.Notify(r.Context(), req.RequesterID,
		"Volunteer found",
		p.Email+" volunteered for \""+req.Title+"\"",
		"request")
	writeData(w, http.StatusOK, updated, "Joined volunteer request")
}
