package httpapi

import (
	"net/http"
	"strings"
	"time"

	"grow104.org/internal/apperr"
	"grow104.org/internal/audit"
	"grow104.org/internal/garden"
	"grow104.org/internal/validate"
)

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEvents(w, r)
	case http.MethodPost:
		a.createEvent(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/events/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Event not found"))
		return
	}
	switch action {
	case "register":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.registerForEvent(w, r, id)
	case "unregister":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.unregisterFromEvent(w, r, id)
	case "":
		switch r.Method {
		case http.MethodGet:
			a.getEvent(w, r, id)
		case http.MethodPut:
			a.updateEvent(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
		}
	default:
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Resource not found"))
	}
}

// listEvents returns upcoming events; past ones only with ?includePast=true.
func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := garden.EventFilter{
		GardenID: strings.TrimSpace(q.Get("gardenId")),
		Type:     strings.TrimSpace(q.Get("type")),
	}
	if q.Get("includePast") != "true" {
		filter.From = time.Now().UTC()
	}
	events, err := a.store.Events().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if events == nil {
		events = []*garden.Event{}
	}
	writeData(w, http.StatusOK, events, "")
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request, id string) {
	event, err := a.store.Events().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	count, err := a.store.Events().CountRegistrations(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"event":      event,
		"registered": count,
	}, "")
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
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
	values, err := validate.Apply(validate.EventCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	gardenID := values.String("gardenId")
	if err := a.policy.RequireManage(r.Context(), p, gardenID); err != nil {
		writeErr(w, r, err)
		return
	}

	date, _ := values.Time("date")
	event := &garden.Event{
		GardenID:    gardenID,
		CreatedBy:   p.ID,
		Title:       values.String("title"),
		Type:        values.String("type"),
		Description: values.String("description"),
		Date:        date,
		StartTime:   values.String("startTime"),
		EndTime:     values.String("endTime"),
	}
	if values.Has("location") {
		loc := values.String("location")
		event.Location = &loc
	}
	if max, ok := values.Int("maxParticipants"); ok {
		event.MaxParticipants = &max
	}
	if err := a.store.Events().Create(r.Context(), event); err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "event.create", map[string]any{
		"event_id":  event.ID,
		"garden_id": gardenID,
	})
	writeData(w, http.StatusCreated, event, "Event created")
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	event, err := a.store.Events().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.policy.RequireManage(r.Context(), p, event.GardenID); err != nil {
		writeErr(w, r, err)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.EventUpdate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	var patch garden.EventPatch
	if values.Has("title") {
		v := values.String("title")
		patch.Title = &v
	}
	if values.Has("type") {
		v := values.String("type")
		patch.Type = &v
	}
	if values.Has("description") {
		v := values.String("description")
		patch.Description = &v
	}
	if d, ok := values.Time("date"); ok {
		patch.Date = &d
	}
	if values.Has("startTime") {
		v := values.String("startTime")
		patch.StartTime = &v
	}
	if values.Has("endTime") {
		v := values.String("endTime")
		patch.EndTime = &v
	}
	if values.Has("location") {
		if values.IsNull("location") {
			patch.Location = garden.PatchNull[string]()
		} else {
			patch.Location = garden.PatchValue(values.String("location"))
		}
	}
	if values.Has("maxParticipants") {
		if values.IsNull("maxParticipants") {
			patch.MaxParticipants = garden.PatchNull[int]()
		} else {
			max, _ := values.Int("maxParticipants")
			patch.MaxParticipants = garden.PatchValue(max)
		}
	}

	updated, err := a.store.Events().Update(r.Context(), id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updated, "Event updated")
}

func (a *API) registerForEvent(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	event, err := a.store.Events().FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if event.MaxParticipants != nil {
		count, err := a.store.Events().CountRegistrations(r.Context(), id)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		if count >= *event.MaxParticipants {
			writeErr(w, r, apperr.New(apperr.KindConflict, "Event is full"))
			return
		}
	}
	// Duplicate registrations surface as CONFLICT from the store's
	// unique constraint, never from a read-then-write check here.
	if err := a.store.Events().Register(r.Context(), id, p.ID); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"eventId": id}, "Registered for event")
}

func (a *API) unregisterFromEvent(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.store.Events().Unregister(r.Context(), id, p.ID); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"eventId": id}, "Registration removed")
}
