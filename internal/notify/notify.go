// Package notify fans notifications out to recipients. Delivery is
// best effort: a failed write is logged and counted but never fails
// the operation that triggered it.
package notify

import (
	"context"

	"grow104.org/internal/garden"
	"grow104.org/internal/obs"
)

// Dispatcher writes notification rows for domain events.
type Dispatcher struct {
	store garden.Store
}

// NewDispatcher builds a Dispatcher over the given store.
func NewDispatcher(store garden.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Notify writes a single notification for one recipient.
func (d *Dispatcher) Notify(ctx context.Context, userID, title, message, kind string) {
	n := &garden.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	}
	if err := d.store.Notifications().Create(ctx, n); err != nil {
		obs.CountNotification(kind, "error")
		obs.Emit("error", map[string]any{
			"msg":    "notification write failed",
			"userId": userID,
			"type":   kind,
			"error":  err.Error(),
		})
		return
	}
	obs.CountNotification(kind, "ok")
}

// NotifyMany writes one notification row per recipient.
func (d *Dispatcher) NotifyMany(ctx context.Context, userIDs []string, title, message, kind string) {
	if len(userIDs) == 0 {
		return
	}
	rows := make([]*garden.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, &garden.Notification{
			UserID:  id,
			Title:   title,
			Message: message,
			Type:    kind,
		})
	}
	if err := d.store.Notifications().CreateMany(ctx, rows); err != nil {
		obs.CountNotification(kind, "error")
		obs.Emit("error", map[string]any{
			"msg":        "notification fan-out failed",
			"recipients": len(userIDs),
			"type":       kind,
			"error":      err.Error(),
		})
		return
	}
	obs.CountNotification(kind, "ok")
}

// NotifyAdmins fans a notification out to every admin account except
// the acting user, so admins never hear about their own actions.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, actorID, title, message, kind string) {
	adminIDs, err := d.store.Users().AdminIDs(ctx)
	if err != nil {
		obs.CountNotification(kind, "error")
		obs.Emit("error", map[string]any{
			"msg":   "admin lookup failed",
			"type":  kind,
			"error": err.Error(),
		})
		return
	}
	recipients := adminIDs[:0]
	for _, id := range adminIDs {
		if id != actorID {
			recipients = append(recipients, id)
		}
	}
	d.NotifyMany(ctx, recipients, title, message, kind)
}
