package httpapi

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"grow104.org/internal/garden"
)

func (c *apiClient) createEvent(token, gardenID string, extra map[string]any) garden.Event {
	c.t.Helper()
	body := map[string]any{
		"title":       "Harvest day",
		"type":        "harvest",
		"description": "Bring gloves",
		"gardenId":    gardenID,
		"date":        time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"startTime":   "09:00",
		"endTime":     "12:00",
	}
	for k, v := range extra {
		body[k] = v
	}
	resp := c.post("/v1/events", body, withToken(token))
	if resp.StatusCode != http.StatusCreated {
		env := decode[errEnv](c.t, resp)
		c.t.Fatalf("create event: status %d (%s)", resp.StatusCode, env.Error)
	}
	return decode[okEnv[garden.Event]](c.t, resp).Data
}

func TestEventCreateAndList(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("gard@example.com", "Gardener", "1 Main St")

	created := c.createEvent(owner.AccessToken, owner.Garden.ID, map[string]any{
		"location": "North plot",
	})
	if created.CreatedBy != owner.User.ID {
		t.Fatalf("createdBy %q", created.CreatedBy)
	}
	if created.Location == nil || *created.Location != "North plot" {
		t.Fatalf("location not stored")
	}

	resp := c.get("/v1/events", url.Values{"gardenId": {owner.Garden.ID}}, withToken(owner.AccessToken))
	list := decode[okEnv[[]garden.Event]](t, resp)
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("list %+v", list.Data)
	}

	// A past event is hidden unless asked for.
	c.createEvent(owner.AccessToken, owner.Garden.ID, map[string]any{
		"title": "Old planting",
		"type":  "planting",
		"date":  time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339),
	})
	resp = c.get("/v1/events", nil, withToken(owner.AccessToken))
	list = decode[okEnv[[]garden.Event]](t, resp)
	if len(list.Data) != 1 {
		t.Fatalf("past event listed: %d items", len(list.Data))
	}
	resp = c.get("/v1/events", url.Values{"includePast": {"true"}}, withToken(owner.AccessToken))
	list = decode[okEnv[[]garden.Event]](t, resp)
	if len(list.Data) != 2 {
		t.Fatalf("includePast listed %d items", len(list.Data))
	}
}

func TestEventCreateRequiresGardenAccess(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("own2@example.com", "Gardener", "2 Main St")
	other := c.signup("other@example.com", "Gardener", "3 Main St")
	vol := c.signup("vol2@example.com", "Volunteer", "")

	body := map[string]any{
		"title":       "Private event",
		"type":        "community",
		"description": "Not yours",
		"gardenId":    owner.Garden.ID,
		"date":        time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"startTime":   "10:00",
		"endTime":     "11:00",
	}
	for name, token := range map[string]string{
		"unrelated gardener": other.AccessToken,
		"volunteer":          vol.AccessToken,
	} {
		resp := c.post("/v1/events", body, withToken(token))
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: status %d", name, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestEventRegistration(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("host@example.com", "Gardener", "4 Main St")
	a := c.signup("va@example.com", "Volunteer", "")
	b := c.signup("vb@example.com", "Volunteer", "")

	event := c.createEvent(owner.AccessToken, owner.Garden.ID, map[string]any{
		"maxParticipants": 1,
	})

	resp := c.post("/v1/events/"+event.ID+"/register", nil, withToken(a.AccessToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Registering twice trips the uniqueness constraint.
	resp = c.post("/v1/events/"+event.ID+"/register", nil, withToken(a.AccessToken))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The event is full for everyone else.
	resp = c.post("/v1/events/"+event.ID+"/register", nil, withToken(b.AccessToken))
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusConflict || env.Error != "Event is full" {
		t.Fatalf("full event: status %d error %q", resp.StatusCode, env.Error)
	}

	// Unregistering frees the slot.
	resp = c.post("/v1/events/"+event.ID+"/unregister", nil, withToken(a.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unregister status %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = c.post("/v1/events/"+event.ID+"/register", nil, withToken(b.AccessToken))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register after unregister status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/v1/events/"+event.ID, nil, withToken(owner.AccessToken))
	detail := decode[okEnv[map[string]any]](t, resp)
	if detail.Data["registered"] != float64(1) {
		t.Fatalf("registered count %v", detail.Data["registered"])
	}
}

func TestEventUpdateClearsNullableFields(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("upd@example.com", "Gardener", "5 Main St")
	event := c.createEvent(owner.AccessToken, owner.Garden.ID, map[string]any{
		"location":        "South plot",
		"maxParticipants": 10,
	})

	resp := c.put("/v1/events/"+event.ID, map[string]any{
		"title":           "Harvest day (moved)",
		"location":        nil,
		"maxParticipants": nil,
	}, withToken(owner.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}
	updated := decode[okEnv[garden.Event]](t, resp)
	if updated.Data.Title != "Harvest day (moved)" {
		t.Fatalf("title %q", updated.Data.Title)
	}
	if updated.Data.Location != nil || updated.Data.MaxParticipants != nil {
		t.Fatalf("nullable fields not cleared: %+v", updated.Data)
	}

	// Omitted fields stay intact.
	resp = c.put("/v1/events/"+event.ID, map[string]any{
		"startTime": "08:30",
	}, withToken(owner.AccessToken))
	updated = decode[okEnv[garden.Event]](t, resp)
	if updated.Data.Title != "Harvest day (moved)" || updated.Data.StartTime != "08:30" {
		t.Fatalf("partial update clobbered fields: %+v", updated.Data)
	}

	// Only someone managing the garden may update.
	vol := c.signup("vu@example.com", "Volunteer", "")
	resp = c.put("/v1/events/"+event.ID, map[string]any{"title": "hijack"}, withToken(vol.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("volunteer update status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
