package httpapi

import (
	"net/http"
	"testing"
)

func TestProtectedRouteWithoutToken(t *testing.T) {
	c := newTestAPI(t)

	for _, headers := range []map[string]string{
		nil,
		{"Authorization": "garbage"},
		{"Authorization": "Bearer "},
	} {
		resp := c.get("/v1/auth/me", nil, headers)
		env := decode[errEnv](t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("headers %v: status %d", headers, resp.StatusCode)
		}
		if env.Error != "Authentication token required" {
			t.Fatalf("headers %v: error %q", headers, env.Error)
		}
	}
}

func TestProtectedRouteWithBadToken(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/v1/auth/me", nil, withToken("not.a.jwt"))
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if env.Error == "Authentication token required" {
		t.Fatalf("bad token reported as missing token")
	}
}

func TestBearerSchemeIsCaseSensitive(t *testing.T) {
	c := newTestAPI(t)
	out := c.signup("case@example.com", "Volunteer", "")

	resp := c.get("/v1/auth/me", nil, map[string]string{
		"Authorization": "bearer " + out.AccessToken,
	})
	body := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body.Error != "Authentication token required" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestPublicPathsSkipAuth(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info", "/metrics"} {
		resp := c.get(path, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"bearer abc", "", false},
		{"  Bearer abc", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Errorf("extractBearerToken(%q) = %q,%v; want %q,%v",
				tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
