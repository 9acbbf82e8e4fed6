// Package httpapi is the HTTP layer: thin handlers that validate,
// authorize, call the store, and write the response envelope.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
	"grow104.org/internal/notify"
	"grow104.org/internal/obs"
	"grow104.org/internal/policy"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	store      garden.Store
	tokens     *auth.TokenService
	policy     *policy.Resolver
	notify     *notify.Dispatcher
	readyProbe ReadyProbe
	version    string

	rateBurst      int
	ratePerSec     int
	allowedOrigins []string
	requestTimeout time.Duration
}

func New(rp ReadyProbe, version string, store garden.Store, tokens *auth.TokenService) *API {
	a := &API{
		mux:            http.NewServeMux(),
		store:          store,
		tokens:         tokens,
		policy:         policy.NewResolver(store),
		notify:         notify.NewDispatcher(store),
		readyProbe:     rp,
		version:        version,
		rateBurst:      30,
		ratePerSec:     15,
		requestTimeout: 10 * time.Second,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/v1/auth/signup", a.handleSignup)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)
	a.mux.HandleFunc("/v1/auth/heartbeat", a.handleHeartbeat)

	// gardens
	a.mux.HandleFunc("/v1/gardens", a.handleGardensCollection)
	a.mux.HandleFunc("/v1/gardens/", a.handleGardenResource)

	// users
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	// events
	a.mux.HandleFunc("/v1/events", a.handleEventsCollection)
	a.mux.HandleFunc("/v1/events/", a.handleEventResource)

	// tasks
	a.mux.HandleFunc("/v1/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/v1/tasks/", a.handleTaskResource)

	// notifications
	a.mux.HandleFunc("/v1/notifications", a.handleNotificationsCollection)
	a.mux.HandleFunc("/v1/notifications/", a.handleNotificationResource)

	// messages
	a.mux.HandleFunc("/v1/messages", a.handleMessagesCollection)
	a.mux.HandleFunc("/v1/messages/", a.handleMessageResource)

	// invitations
	a.mux.HandleFunc("/v1/invitations", a.handleInvitationsCollection)
	a.mux.HandleFunc("/v1/invitations/", a.handleInvitationResource)

	// requests
	a.mux.HandleFunc("/v1/gardener-requests", a.handleGardenerRequestsCollection)
	a.mux.HandleFunc("/v1/gardener-requests/", a.handleGardenerRequestResource)
	a.mux.HandleFunc("/v1/volunteer-requests", a.handleVolunteerRequestsCollection)
	a.mux.HandleFunc("/v1/volunteer-requests/", a.handleVolunteerRequestResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler composes the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	corsMW := cors.Handler(cors.Options{
		AllowedOrigins:   a.origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = Timeout(h, a.requestTimeout)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = corsMW(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	h = Logging(h)
	return obs.Instrument(h)
}

// SetAllowedOrigins overrides the CORS allow list.
func (a *API) SetAllowedOrigins(origins []string) {
	a.allowedOrigins = origins
}

func (a *API) origins() []string {
	if len(a.allowedOrigins) > 0 {
		return a.allowedOrigins
	}
	return []string{"http://localhost:*", "http://127.0.0.1:*"}
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "grow104-api",
		"version": a.version,
	}, "")
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"error":   "not ready",
		})
		return
	}
	writeData(w, http.StatusOK, map[string]any{"status": "ready"}, "")
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"name":    "grow104-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	}, "")
}
