package httpapi

import (
	"net/http"
	"strings"
	"time"

	"grow104.org/internal/apperr"
	"grow104.org/internal/garden"
	"grow104.org/internal/validate"
)

func (a *API) handleMessagesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.sendMessage(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost)
	}
}

func (a *API) handleMessageResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/messages/")
	if rest == "unread-count" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.unreadCount(w, r)
		return
	}
	if peerID, ok := strings.CutPrefix(rest, "conversation/"); ok && peerID != "" && !strings.Contains(peerID, "/") {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.conversation(w, r, peerID)
		return
	}
	writeErr(w, r, apperr.New(apperr.KindNotFound, "Resource not found"))
}

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request) {
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
	values, err := validate.Apply(validate.MessageCreate, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	toUserID := values.String("toUserId")
	if _, err := a.store.Users().FindByID(r.Context(), toUserID); err != nil {
		writeErr(w, r, err)
		return
	}
	msg := &garden.Message{
		FromUserID:  p.ID,
		ToUserID:    toUserID,
		Subject:     values.String("subject"),
		Content:     values.String("content"),
		RequestType: values.String("requestType"),
	}
	if err := a.store.Messages().Create(r.Context(), msg); err != nil {
		writeErr(w, r, err)
		return
	}
	a.notify.Notify(r.Context(), toUserID,
		"New message",
		"New message from "+p.Email+": "+msg.Subject,
		"message")
	writeData(w, http.StatusCreated, msg, "Message sent")
}

// conversation returns the full exchange with a peer and marks the
// peer's unread messages to the caller as read in the same call.
func (a *API) conversation(w http.ResponseWriter, r *http.Request, peerID string) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.store.Messages().MarkConversationRead(r.Context(), peerID, p.ID, time.Now().UTC()); err != nil {
		writeErr(w, r, err)
		return
	}
	msgs, err := a.store.Messages().Conversation(r.Context(), p.ID, peerID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []*garden.Message{}
	}
	writeData(w, http.StatusOK, msgs, "")
}

func (a *API) unreadCount(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	count, err := a.store.Messages().UnreadCount(r.Context(), p.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"unread": count}, "")
}
