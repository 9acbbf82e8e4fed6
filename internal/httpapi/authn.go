package httpapi

import (
	"net/http"
	"strings"

	"grow104.org/internal/apperr"
	"grow104.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/v1/info",
	"/v1/auth/signup",
	"/v1/auth/login",
	"/v1/auth/refresh",
	"/",
}

// withAuth verifies the bearer token on every non-public path and
// attaches the principal to the request context. A missing or
// malformed header and a bad token are distinct failures.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			writeErr(w, r, apperr.New(apperr.KindNoToken, "Authentication token required"))
			return
		}

		principal, err := a.tokens.VerifyAccess(token)
		if err != nil {
			writeErr(w, r, err)
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principal returns the authenticated principal. withAuth guarantees
// presence on protected paths, so absence is an internal error.
func (a *API) principal(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, apperr.New(apperr.KindInternal, "missing principal")
	}
	return p, nil
}

// extractBearerToken requires the exact "Bearer " scheme. Lowercase
// or otherwise mangled schemes count as a missing token.
func extractBearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearer) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
