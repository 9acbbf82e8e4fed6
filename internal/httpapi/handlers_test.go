package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"grow104.org/internal/apperr"
	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	api := New(ReadyProbe{}, "test", garden.NewMemoryStore(), tokens)
	api.rateBurst = 1000
	api.ratePerSec = 1000

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) put(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPut, path, body, headers)
}

func (c *apiClient) delete(path string, headers map[string]string) *http.Response {
	return c.do(http.MethodDelete, path, nil, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func withToken(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

type okEnv[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

type errEnv struct {
	Success          bool               `json:"success"`
	Error            string             `json:"error"`
	StatusCode       int                `json:"statusCode"`
	ValidationErrors []apperr.Violation `json:"validationErrors"`
	Data             map[string]any     `json:"data"`
}

type authPayload struct {
	User         *garden.User   `json:"user"`
	Garden       *garden.Garden `json:"garden"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// signup registers an account and returns the auth payload. The email
// local part doubles as the display name.
func (c *apiClient) signup(email, role, address string) authPayload {
	c.t.Helper()
	body := map[string]any{
		"email":    email,
		"password": "password123",
		"name":     strings.SplitN(email, "@", 2)[0],
		"role":     role,
	}
	if address != "" {
		body["address"] = address
	}
	resp := c.post("/v1/auth/signup", body, nil)
	if resp.StatusCode != http.StatusCreated {
		env := decode[errEnv](c.t, resp)
		c.t.Fatalf("signup %s: status %d (%s)", email, resp.StatusCode, env.Error)
	}
	env := decode[okEnv[authPayload]](c.t, resp)
	if env.Data.AccessToken == "" || env.Data.RefreshToken == "" {
		c.t.Fatalf("signup %s: empty token pair", email)
	}
	return env.Data
}

func TestHealthInfoAndReady(t *testing.T) {
	c := newTestAPI(t)

	resp := c.get("/healthz", nil, nil)
	env := decode[okEnv[map[string]any]](t, resp)
	if resp.StatusCode != http.StatusOK || env.Data["status"] != "ok" {
		t.Fatalf("healthz: status %d data %v", resp.StatusCode, env.Data)
	}

	resp = c.get("/readyz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/v1/info", nil, nil)
	env = decode[okEnv[map[string]any]](t, resp)
	if env.Data["version"] != "test" {
		t.Fatalf("info version %v", env.Data["version"])
	}
}

func TestSignupGardenerCreatesGarden(t *testing.T) {
	c := newTestAPI(t)

	out := c.signup("alice@example.com", "Gardener", "12 Elm St")
	if out.User == nil || out.User.Role != auth.RoleGardener {
		t.Fatalf("unexpected user %+v", out.User)
	}
	if out.Garden == nil {
		t.Fatalf("gardener signup did not return a garden")
	}
	if out.Garden.OwnerID != out.User.ID {
		t.Fatalf("garden owner %q != user %q", out.Garden.OwnerID, out.User.ID)
	}
	if out.Garden.Name != "alice's Garden" {
		t.Fatalf("garden name %q", out.Garden.Name)
	}

	// Volunteers get no garden.
	vol := c.signup("bob@example.com", "Volunteer", "")
	if vol.Garden != nil {
		t.Fatalf("volunteer signup returned a garden")
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	c := newTestAPI(t)
	c.signup("dup@example.com", "Volunteer", "")

	resp := c.post("/v1/auth/signup", map[string]any{
		"email":    "dup@example.com",
		"password": "password123",
		"name":     "dup again",
		"role":     "Volunteer",
	}, nil)
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusConflict || env.StatusCode != http.StatusConflict {
		t.Fatalf("status %d body %+v", resp.StatusCode, env)
	}
	if env.Success {
		t.Fatalf("conflict envelope marked success")
	}
}

func TestSignupAddressCollisionReturnsExistingGarden(t *testing.T) {
	c := newTestAPI(t)
	first := c.signup("own@example.com", "Gardener", "99 Oak Ave")

	resp := c.post("/v1/auth/signup", map[string]any{
		"email":    "late@example.com",
		"password": "password123",
		"name":     "late",
		"role":     "Gardener",
		"address":  "99 Oak Ave",
	}, nil)
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d", resp.StatusCode)
	}
	existing, ok := env.Data["existingGarden"].(map[string]any)
	if !ok {
		t.Fatalf("missing existingGarden payload: %+v", env.Data)
	}
	if existing["id"] != first.Garden.ID {
		t.Fatalf("existing garden id %v, want %s", existing["id"], first.Garden.ID)
	}
	if env.Data["requiresUserChoice"] != true {
		t.Fatalf("requiresUserChoice not set")
	}
}

func TestSignupValidation(t *testing.T) {
	c := newTestAPI(t)

	// Missing password.
	resp := c.post("/v1/auth/signup", map[string]any{
		"email": "novalid@example.com",
		"name":  "no valid",
		"role":  "Volunteer",
	}, nil)
	env := decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	found := false
	for _, v := range env.ValidationErrors {
		if v.Field == "password" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no password violation in %+v", env.ValidationErrors)
	}

	// Gardener without address.
	resp = c.post("/v1/auth/signup", map[string]any{
		"email":    "noaddr@example.com",
		"password": "password123",
		"name":     "no addr",
		"role":     "Gardener",
	}, nil)
	env = decode[errEnv](t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if len(env.ValidationErrors) != 1 || env.ValidationErrors[0].Field != "address" {
		t.Fatalf("violations %+v", env.ValidationErrors)
	}
}

func TestLoginRefreshAndMe(t *testing.T) {
	c := newTestAPI(t)
	c.signup("carol@example.com", "Volunteer", "")

	resp := c.post("/v1/auth/login", map[string]any{
		"email":    "carol@example.com",
		"password": "password123",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	login := decode[okEnv[authPayload]](t, resp)
	if !login.Data.User.IsOnline {
		t.Fatalf("login did not mark user online")
	}

	resp = c.post("/v1/auth/refresh", map[string]any{
		"refreshToken": login.Data.RefreshToken,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status %d", resp.StatusCode)
	}
	refreshed := decode[okEnv[authPayload]](t, resp)
	if refreshed.Data.AccessToken == "" || refreshed.Data.User.ID != login.Data.User.ID {
		t.Fatalf("unexpected refresh payload")
	}

	resp = c.get("/v1/auth/me", nil, withToken(refreshed.Data.AccessToken))
	me := decode[okEnv[garden.User]](t, resp)
	if resp.StatusCode != http.StatusOK || me.Data.Email != "carol@example.com" {
		t.Fatalf("me: status %d email %q", resp.StatusCode, me.Data.Email)
	}
	if me.Data.PasswordHash != "" {
		t.Fatalf("password hash leaked in response")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	c := newTestAPI(t)
	c.signup("dave@example.com", "Volunteer", "")

	for _, body := range []map[string]any{
		{"email": "dave@example.com", "password": "wrong-password"},
		{"email": "ghost@example.com", "password": "password123"},
	} {
		resp := c.post("/v1/auth/login", body, nil)
		env := decode[errEnv](t, resp)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("login %v: status %d", body["email"], resp.StatusCode)
		}
		if env.Error != "Invalid email or password" {
			t.Fatalf("login %v: error %q", body["email"], env.Error)
		}
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	c := newTestAPI(t)
	out := c.signup("erin@example.com", "Volunteer", "")

	// An access token is signed with a different secret and must not
	// pass refresh verification.
	resp := c.post("/v1/auth/refresh", map[string]any{
		"refreshToken": out.AccessToken,
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHeartbeatUpdatesPresence(t *testing.T) {
	c := newTestAPI(t)
	out := c.signup("frank@example.com", "Volunteer", "")

	resp := c.post("/v1/auth/heartbeat", nil, withToken(out.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("heartbeat status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/v1/auth/me", nil, withToken(out.AccessToken))
	me := decode[okEnv[garden.User]](t, resp)
	if !me.Data.IsOnline || me.Data.LastSeen == nil {
		t.Fatalf("presence not recorded: %+v", me.Data)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	c := newTestAPI(t)
	out := c.signup("lost@example.com", "Volunteer", "")
	resp := c.get("/v1/nope", nil, withToken(out.AccessToken))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	resp.Body.Close()
}
