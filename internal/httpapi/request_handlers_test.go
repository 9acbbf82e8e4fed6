package httpapi

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"grow104.org/internal/garden"
)

func TestGardenerRequestLifecycle(t *testing.T) {
	c := newTestAPI(t)
	admin := c.signup("ra@example.com", "Admin", "")
	gardener := c.signup("rb@example.com", "Gardener", "40 Main St")
	vol := c.signup("rc@example.com", "Volunteer", "")

	// Volunteers cannot file resource requests.
	resp := c.post("/v1/gardener-requests", map[string]any{
		"title":       "Need trowels",
		"description": "Three hand trowels",
		"requestType": "supplies",
	}, withToken(vol.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("volunteer create status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/v1/gardener-requests", map[string]any{
		"title":       "Need trowels",
		"description": "Three hand trowels",
		"requestType": "supplies",
		"quantity":    3,
	}, withToken(gardener.AccessToken))
	if resp.StatusCode != http.StatusCreated {
		env := decode[errEnv](t, resp)
		t.Fatalf("create: status %d (%s)", resp.StatusCode, env.Error)
	}
	req := decode[okEnv[garden.GardenerRequest]](t, resp).Data
	if req.Status != garden.RequestStatusPending {
		t.Fatalf("status %q", req.Status)
	}
	if req.Quantity == nil || *req.Quantity != 3 {
		t.Fatalf("quantity %+v", req.Quantity)
	}

	// Admins were notified.
	resp = c.get("/v1/notifications", url.Values{"type": {"request"}}, withToken(admin.AccessToken))
	page := decode[okEnv[notificationPage]](t, resp)
	if page.Data.Total != 1 {
		t.Fatalf("admin request notifications %d", page.Data.Total)
	}

	// The requester sees only their own; the admin sees all.
	other := c.signup("rd@example.com", "Gardener", "41 Main St")
	resp = c.get("/v1/gardener-requests", nil, withToken(other.AccessToken))
	list := decode[okEnv[[]garden.GardenerRequest]](t, resp)
	if len(list.Data) != 0 {
		t.Fatalf("other gardener list %+v", list.Data)
	}
	resp = c.get("/v1/gardener-requests", url.Values{"requestType": {"supplies"}}, withToken(admin.AccessToken))
	list = decode[okEnv[[]garden.GardenerRequest]](t, resp)
	if len(list.Data) != 1 {
		t.Fatalf("admin list %+v", list.Data)
	}

	// Status transitions are admin-only.
	resp = c.put("/v1/gardener-requests/"+req.ID, map[string]any{
		"status": "approved",
	}, withToken(gardener.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("requester status change: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The requester may still edit their own text fields.
	resp = c.put("/v1/gardener-requests/"+req.ID, map[string]any{
		"notes": "Steel preferred",
	}, withToken(gardener.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("requester edit status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.put("/v1/gardener-requests/"+req.ID, map[string]any{
		"status": "approved",
	}, withToken(admin.AccessToken))
	updated := decode[okEnv[garden.GardenerRequest]](t, resp)
	if resp.StatusCode != http.StatusOK || updated.Data.Status != "approved" {
		t.Fatalf("admin approve: status %d %+v", resp.StatusCode, updated.Data)
	}

	// The decision notified the requester.
	resp = c.get("/v1/notifications", url.Values{"type": {"request"}}, withToken(gardener.AccessToken))
	page = decode[okEnv[notificationPage]](t, resp)
	if page.Data.Total != 1 {
		t.Fatalf("requester notifications %d", page.Data.Total)
	}
}

func TestGardenerRequestSeedlingFields(t *testing.T) {
	c := newTestAPI(t)
	gardener := c.signup("re@example.com", "Gardener", "42 Main St")

	resp := c.post("/v1/gardener-requests", map[string]any{
		"title":       "Spring seedlings",
		"description": "Tomato starts for the raised beds",
		"requestType": "seedlings",
		"seedlingIds": []string{"1d8f8f4e-9a3b-4a7e-8f0f-2e5f6a7b8c9d"},
		"season":      "spring",
	}, withToken(gardener.AccessToken))
	req := decode[okEnv[garden.GardenerRequest]](t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if len(req.Data.SeedlingIDs) != 1 || req.Data.Season != "spring" {
		t.Fatalf("seedling fields %+v", req.Data)
	}

	// An unknown request type is a validation failure.
	resp = c.post("/v1/gardener-requests", map[string]any{
		"title":       "bad",
		"description": "bad",
		"requestType": "weather-control",
	}, withToken(gardener.AccessToken))
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusBadRequest || len(env.ValidationErrors) == 0 {
		t.Fatalf("status %d violations %+v", resp.StatusCode, env.ValidationErrors)
	}
}

func (c *apiClient) createVolunteerRequest(token string, body map[string]any) *http.Response {
	c.t.Helper()
	base := map[string]any{
		"title":       "Weekend weeding",
		"description": "Two hours of weeding help",
		"date":        time.Now().Add(96 * time.Hour).UTC().Format(time.RFC3339),
	}
	for k, v := range body {
		base[k] = v
	}
	return c.post("/v1/volunteer-requests", base, withToken(token))
}

func TestVolunteerRequestGardenResolution(t *testing.T) {
	c := newTestAPI(t)
	gardener := c.signup("va2@example.com", "Gardener", "50 Main St")

	// A single-garden gardener may omit gardenId.
	resp := c.createVolunteerRequest(gardener.AccessToken, nil)
	if resp.StatusCode != http.StatusCreated {
		env := decode[errEnv](t, resp)
		t.Fatalf("create: status %d (%s)", resp.StatusCode, env.Error)
	}
	req := decode[okEnv[garden.VolunteerRequest]](t, resp)
	if req.Data.GardenID != gardener.Garden.ID {
		t.Fatalf("resolved garden %q, want %q", req.Data.GardenID, gardener.Garden.ID)
	}
	if req.Data.Status != garden.VolunteerRequestOpen {
		t.Fatalf("status %q", req.Data.Status)
	}

	// Once assigned to a second garden the choice must be explicit.
	second := c.signup("vb2@example.com", "Gardener", "51 Main St")
	inv := c.invite(second.AccessToken, second.Garden.ID, gardener.User.ID, "Gardener")
	r := c.put("/v1/invitations/"+inv.ID+"/accept", nil, withToken(gardener.AccessToken))
	if r.StatusCode != http.StatusOK {
		t.Fatalf("accept status %d", r.StatusCode)
	}
	r.Body.Close()

	resp = c.createVolunteerRequest(gardener.AccessToken, nil)
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("ambiguous create status %d", resp.StatusCode)
	}
	if len(env.ValidationErrors) == 0 || env.ValidationErrors[0].Field != "gardenId" {
		t.Fatalf("violations %+v", env.ValidationErrors)
	}

	// Explicit gardenId still works.
	resp = c.createVolunteerRequest(gardener.AccessToken, map[string]any{
		"gardenId": second.Garden.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("explicit create status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestVolunteerRequestJoin(t *testing.T) {
	c := newTestAPI(t)
	gardener := c.signup("vc2@example.com", "Gardener", "52 Main St")
	helper := c.signup("vd2@example.com", "Volunteer", "")
	late := c.signup("ve2@example.com", "Volunteer", "")

	resp := c.createVolunteerRequest(gardener.AccessToken, nil)
	req := decode[okEnv[garden.VolunteerRequest]](t, resp).Data

	resp = c.post("/v1/volunteer-requests/"+req.ID+"/join", nil, withToken(helper.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status %d", resp.StatusCode)
	}
	joined := decode[okEnv[garden.VolunteerRequest]](t, resp)
	if joined.Data.Status != garden.VolunteerRequestFilled {
		t.Fatalf("status %q", joined.Data.Status)
	}
	if joined.Data.VolunteerID == nil || *joined.Data.VolunteerID != helper.User.ID {
		t.Fatalf("volunteerId = %v, want %s", joined.Data.VolunteerID, helper.User.ID)
	}

	// A filled request cannot be joined again.
	resp = c.post("/v1/volunteer-requests/"+req.ID+"/join", nil, withToken(late.AccessToken))
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusConflict || env.Error != "Request is no longer open" {
		t.Fatalf("late join: status %d error %q", resp.StatusCode, env.Error)
	}

	// The requester heard about the volunteer.
	resp = c.get("/v1/notifications", url.Values{"type": {"request"}}, withToken(gardener.AccessToken))
	page := decode[okEnv[notificationPage]](t, resp)
	if page.Data.Total != 1 {
		t.Fatalf("requester notifications %d", page.Data.Total)
	}

	// Listing filters by status.
	resp = c.get("/v1/volunteer-requests", url.Values{"status": {"filled"}}, withToken(gardener.AccessToken))
	list := decode[okEnv[[]garden.VolunteerRequest]](t, resp)
	if len(list.Data) != 1 || list.Data[0].ID != req.ID {
		t.Fatalf("filled list %+v", list.Data)
	}
}

func TestVolunteerRequestRequiresGardenForAdmins(t *testing.T) {
	c := newTestAPI(t)
	admin := c.signup("vf2@example.com", "Admin", "")
	gardener := c.signup("vg2@example.com", "Gardener", "53 Main St")

	// An admin without an explicit garden is a validation failure,
	// with one it goes through.
	resp := c.createVolunteerRequest(admin.AccessToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("implicit admin create status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.createVolunteerRequest(admin.AccessToken, map[string]any{
		"gardenId": gardener.Garden.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("explicit admin create status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
