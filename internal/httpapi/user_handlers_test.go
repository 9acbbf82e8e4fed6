package httpapi

import (
	"net/http"
	"net/url"
	"testing"

	"grow104.org/internal/garden"
)

func TestUserListIsAdminOnly(t *testing.T) {
	c := newTestAPI(t)

	admin := c.signup("admin@example.com", "Admin", "")
	c.signup("grower@example.com", "Gardener", "12 Elm St")
	vol := c.signup("helper@example.com", "Volunteer", "")

	resp := c.get("/v1/users", nil, withToken(vol.AccessToken))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("volunteer list status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/v1/users", nil, withToken(admin.AccessToken))
	env := decode[okEnv[[]*garden.User]](t, resp)
	if resp.StatusCode != http.StatusOK || len(env.Data) != 3 {
		t.Fatalf("status %d, users %d", resp.StatusCode, len(env.Data))
	}
	for _, u := range env.Data {
		if u.PasswordHash != "" {
			t.Fatalf("password hash leaked for %s", u.Email)
		}
	}

	resp = c.get("/v1/users", url.Values{"role": {"Gardener"}}, withToken(admin.AccessToken))
	env = decode[okEnv[[]*garden.User]](t, resp)
	if len(env.Data) != 1 || env.Data[0].Email != "grower@example.com" {
		t.Fatalf("role filter returned %+v", env.Data)
	}
}

func TestProfileUpdate(t *testing.T) {
	c := newTestAPI(t)
	out := c.signup("pat@example.com", "Volunteer", "")

	resp := c.put("/v1/users/profile", map[string]any{
		"name":  "Pat Q. Volunteer",
		"phone": "555-0100",
	}, withToken(out.AccessToken))
	env := decode[okEnv[*garden.User]](t, resp)
	if resp.StatusCode != http.StatusOK || env.Message != "Profile updated" {
		t.Fatalf("status %d message %q", resp.StatusCode, env.Message)
	}
	if env.Data.Name != "Pat Q. Volunteer" || env.Data.Phone != "555-0100" {
		t.Fatalf("updated user %+v", env.Data)
	}

	// Clearing a field and leaving the rest alone.
	resp = c.put("/v1/users/profile", map[string]any{
		"phone": "",
	}, withToken(out.AccessToken))
	env = decode[okEnv[*garden.User]](t, resp)
	if env.Data.Phone != "" || env.Data.Name != "Pat Q. Volunteer" {
		t.Fatalf("after clear %+v", env.Data)
	}

	// The change sticks in the account record.
	resp = c.get("/v1/auth/me", nil, withToken(out.AccessToken))
	me := decode[okEnv[*garden.User]](t, resp)
	if me.Data.Name != "Pat Q. Volunteer" {
		t.Fatalf("me name %q", me.Data.Name)
	}
}

func TestProfileUpdateValidation(t *testing.T) {
	c := newTestAPI(t)
	out := c.signup("pat@example.com", "Volunteer", "")

	resp := c.put("/v1/users/profile", map[string]any{
		"name": "",
	}, withToken(out.AccessToken))
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if len(env.ValidationErrors) != 1 || env.ValidationErrors[0].Field != "name" {
		t.Fatalf("violations %+v", env.ValidationErrors)
	}

	resp = c.put("/v1/users/other", nil, withToken(out.AccessToken))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown resource status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
