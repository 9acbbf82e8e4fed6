package httpapi

import (
	"net/http"
	"time"

	"grow104.org/internal/apperr"
	"grow104.org/internal/audit"
	"grow104.org/internal/auth"
	"grow104.org/internal/garden"
	"grow104.org/internal/validate"
)

var errInvalidCredentials = apperr.New(apperr.KindInvalidToken, "Invalid email or password")

type tokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type authResponse struct {
	User   *garden.User   `json:"user"`
	Garden *garden.Garden `json:"garden,omitempty"`
	tokenPair
}

func (a *API) issuePair(u *garden.User) (tokenPair, error) {
	access, exp, err := a.tokens.IssueAccessToken(auth.Principal{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	})
	if err != nil {
		return tokenPair{}, err
	}
	refresh, _, err := a.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return tokenPair{}, err
	}
	return tokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.Signup, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	role, _ := auth.ParseRole(values.String("role"))
	address := values.String("address")
	if role == auth.RoleGardener && address == "" {
		writeErr(w, r, apperr.Validation([]apperr.Violation{
			{Field: "address", Message: "is required for gardeners"},
		}))
		return
	}

	// A gardener's address becomes their garden. An occupied address
	// needs an explicit decision from the user, so the existing garden
	// rides along in the error payload.
	if role == auth.RoleGardener {
		existing, err := a.store.Gardens().FindByAddress(r.Context(), address)
		if err == nil {
			writeErr(w, r, apperr.New(apperr.KindGardenExists,
				"A garden already exists at this address").WithData(map[string]any{
				"existingGarden": map[string]any{
					"id":      existing.ID,
					"name":    existing.Name,
					"address": existing.Address,
				},
				"requiresUserChoice": true,
			}))
			return
		}
		if apperr.KindOf(err) != apperr.KindNotFound {
			writeErr(w, r, err)
			return
		}
	}

	hash, err := auth.HashPassword(values.String("password"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	user := &garden.User{
		Email:        values.String("email"),
		PasswordHash: hash,
		Name:         values.String("name"),
		Role:         role,
		Address:      address,
		Zipcode:      values.String("zipcode"),
		Phone:        values.String("phone"),
		IsActive:     true,
	}
	if err := a.store.Users().Create(r.Context(), user); err != nil {
		writeErr(w, r, err)
		return
	}

	var created *garden.Garden
	if role == auth.RoleGardener {
		g := &garden.Garden{
			Name:    user.Name + "'s Garden",
			Address: address,
			Zipcode: user.Zipcode,
			OwnerID: user.ID,
			Status:  garden.GardenStatusActive,
		}
		if err := a.store.Gardens().Create(r.Context(), g); err != nil {
			writeErr(w, r, err)
			return
		}
		if err := a.store.Memberships().AddGardener(r.Context(), g.ID, user.ID); err != nil {
			writeErr(w, r, err)
			return
		}
		created = g
	}

	a.notify.NotifyAdmins(r.Context(), user.ID,
		"New user registered",
		user.Name+" joined as "+string(role),
		"system")

	pair, err := a.issuePair(user)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.signup", map[string]any{
		"user_id": user.ID,
		"role":    string(role),
	})
	writeData(w, http.StatusCreated, authResponse{User: user, Garden: created, tokenPair: pair}, "Account created")
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.Login, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	user, err := a.store.Users().FindByEmail(r.Context(), values.String("email"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			writeErr(w, r, errInvalidCredentials)
			return
		}
		writeErr(w, r, err)
		return
	}
	if !user.IsActive || auth.VerifyPassword(user.PasswordHash, values.String("password")) != nil {
		writeErr(w, r, errInvalidCredentials)
		return
	}

	now := time.Now().UTC()
	if err := a.store.Users().SetPresence(r.Context(), user.ID, true, now); err != nil {
		writeErr(w, r, err)
		return
	}
	user.IsOnline = true
	user.LastSeen = &now

	pair, err := a.issuePair(user)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{"user_id": user.ID})
	writeData(w, http.StatusOK, authResponse{User: user, tokenPair: pair}, "")
}

// handleRefresh re-fetches the user record before issuing new tokens,
// so a role change or deactivation takes effect on the next refresh.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	payload, err := decodePayload(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	values, err := validate.Apply(validate.Refresh, payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	userID, err := a.tokens.VerifyRefresh(values.String("refreshToken"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	user, err := a.store.Users().FindByID(r.Context(), userID)
	if err != nil || !user.IsActive {
		writeErr(w, r, auth.ErrInvalidToken)
		return
	}

	pair, err := a.issuePair(user)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, authResponse{User: user, tokenPair: pair}, "")
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	user, err := a.store.Users().FindByID(r.Context(), p.ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, "")
}

func (a *API) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	p, err := a.principal(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.store.Users().SetPresence(r.Context(), p.ID, true, time.Now().UTC()); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"online": true}, "")
}
