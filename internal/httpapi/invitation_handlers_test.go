package httpapi

import (
	"net/http"
	"net/url"
	"testing"

	"grow104.org/internal/garden"
)

func (c *apiClient) invite(token, gardenID, userID, role string) garden.Invitation {
	c.t.Helper()
	resp := c.post("/v1/invitations", map[string]any{
		"gardenId": gardenID,
		"userId":   userID,
		"role":     role,
	}, withToken(token))
	if resp.StatusCode != http.StatusCreated {
		env := decode[errEnv](c.t, resp)
		c.t.Fatalf("invite: status %d (%s)", resp.StatusCode, env.Error)
	}
	return decode[okEnv[garden.Invitation]](c.t, resp).Data
}

func TestInvitationAcceptCreatesMembership(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("io@example.com", "Gardener", "30 Main St")
	vol := c.signup("iv@example.com", "Volunteer", "")

	inv := c.invite(owner.AccessToken, owner.Garden.ID, vol.User.ID, "Volunteer")
	if inv.Status != garden.InvitationPending {
		t.Fatalf("status %q", inv.Status)
	}

	// Only the invitee may decide.
	resp := c.put("/v1/invitations/"+inv.ID+"/accept", nil, withToken(owner.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("inviter accept status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.put("/v1/invitations/"+inv.ID+"/accept", nil, withToken(vol.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept status %d", resp.StatusCode)
	}
	accepted := decode[okEnv[garden.Invitation]](t, resp)
	if accepted.Data.Status != garden.InvitationAccepted {
		t.Fatalf("status %q", accepted.Data.Status)
	}

	// Deciding twice conflicts.
	resp = c.put("/v1/invitations/"+inv.ID+"/reject", nil, withToken(vol.AccessToken))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-decide status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The new member cannot be invited again.
	resp = c.post("/v1/invitations", map[string]any{
		"gardenId": owner.Garden.ID,
		"userId":   vol.User.ID,
		"role":     "Volunteer",
	}, withToken(owner.AccessToken))
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusConflict || env.Error != "User is already a member of this garden" {
		t.Fatalf("re-invite: status %d error %q", resp.StatusCode, env.Error)
	}
}

func TestInvitationPendingUniqueness(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("ip@example.com", "Gardener", "31 Main St")
	vol := c.signup("iq@example.com", "Volunteer", "")

	c.invite(owner.AccessToken, owner.Garden.ID, vol.User.ID, "Volunteer")

	resp := c.post("/v1/invitations", map[string]any{
		"gardenId": owner.Garden.ID,
		"userId":   vol.User.ID,
		"role":     "Volunteer",
	}, withToken(owner.AccessToken))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate pending status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestInvitationOnlyOwnerOrAdminInvites(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("ir@example.com", "Gardener", "32 Main St")
	stranger := c.signup("is@example.com", "Gardener", "33 Main St")
	vol := c.signup("it@example.com", "Volunteer", "")
	admin := c.signup("iu@example.com", "Admin", "")

	resp := c.post("/v1/invitations", map[string]any{
		"gardenId": owner.Garden.ID,
		"userId":   vol.User.ID,
		"role":     "Volunteer",
	}, withToken(stranger.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger invite status %d", resp.StatusCode)
	}
	resp.Body.Close()

	c.invite(admin.AccessToken, owner.Garden.ID, vol.User.ID, "Volunteer")
}

func TestInvitationListing(t *testing.T) {
	c := newTestAPI(t)
	owner := c.signup("iw@example.com", "Gardener", "34 Main St")
	vol := c.signup("ix@example.com", "Volunteer", "")
	admin := c.signup("iy@example.com", "Admin", "")

	inv := c.invite(owner.AccessToken, owner.Garden.ID, vol.User.ID, "Volunteer")

	// The invitee sees it; the inviter does not receive it as theirs.
	resp := c.get("/v1/invitations", nil, withToken(vol.AccessToken))
	list := decode[okEnv[[]garden.Invitation]](t, resp)
	if len(list.Data) != 1 || list.Data[0].ID != inv.ID {
		t.Fatalf("invitee list %+v", list.Data)
	}
	resp = c.get("/v1/invitations", nil, withToken(owner.AccessToken))
	list = decode[okEnv[[]garden.Invitation]](t, resp)
	if len(list.Data) != 0 {
		t.Fatalf("inviter list %+v", list.Data)
	}

	// Admins see everything, filterable by status.
	resp = c.get("/v1/invitations", url.Values{"status": {"pending"}}, withToken(admin.AccessToken))
	list = decode[okEnv[[]garden.Invitation]](t, resp)
	if len(list.Data) != 1 {
		t.Fatalf("admin list %+v", list.Data)
	}
}
