package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"grow104.org/internal/apperr"
	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
	"grow104.org/internal/validate"
)

func (a *API) handleNotificationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listNotifications(w, r)
	case http.MethodPost:
		a.createNotification(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// createNotification lets admins push an announcement to a single
// user. Unlike dispatcher fan-out this surfaces storage errors.
func (a *API) createNotification(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := auth.RequireAdmin(p); err != nil {
		writeErr(w, r, err)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.NotificationCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if _, err := a.store.Users().FindByID(r.Context(), values.String("userId")); err != nil {
		writeErr(w, r, err)
		return
	}
	n := &garden.Notification{
		UserID:  values.String("userId"),
		Title:   values.String("title"),
		Message: values.String("message"),
		Type:    values.String("type"),
	}
	if err := a.store.Notifications().Create(r.Context(), n); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, n, "Notification created")
}

func (a *API) handleNotificationResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/notifications/")
	if rest == "mark-all-read" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.markAllNotificationsRead(w, r)
		return
	}
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Notification not found"))
		return
	}
	switch action {
	case "read":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		a.markNotificationRead(w, r, id)
	case "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		a.deleteNotification(w, r, id)
	default:
		writeErr(w, r, apperr.New(apperr.KindNotFound, "Resource not found"))
	}
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := garden.NotificationFilter{
		UserID: p.ID,
		Type:   strings.TrimSpace(q.Get("type")),
	}
	if raw := q.Get("isRead"); raw != "" {
		isRead := raw == "true"
		filter.IsRead = &isRead
	}
	filter.Limit = parseBoundedInt(q.Get("limit"), 20, 1, 100)
	filter.Offset = parseBoundedInt(q.Get("offset"), 0, 0, 1<<30)

	items, total, err := a.store.Notifications().List(r.Context(), filter)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if items == nil {
		items = []*garden.Notification{}
	}
	writeData(w, http.StatusOK, map[string]any{
		"notifications": items,
		"total":         total,
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	}, "")
}

func (a *API) markNotificationRead(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.requireNotificationOwner(r, p.ID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	n, err := a.store.Notifications().MarkRead(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n, "")
}

func (a *API) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.store.Notifications().MarkAllRead(r.Context(), p.ID); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"updated": true}, "All notifications marked read")
}

func (a *API) deleteNotification(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.requireNotificationOwner(r, p.ID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.store.Notifications().Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id}, "Notification deleted")
}

// requireNotificationOwner hides other users' notifications behind a
// NOT_FOUND rather than confirming their existence with a 403.
func (a *API) requireNotificationOwner(r *http.Request, userID, id string) error {
	n, err := a.store.Notifications().FindByID(r.Context(), id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return apperr.New(apperr.KindNotFound, "Notification not found")
	}
	return nil
}

func parseBoundedInt(raw string, def, min, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return def
	}
	return v
}
