package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"grow104.org/internal/apperr"
)

const (
	issuer = "grow104"

	defaultAccessTTL  = 7 * 24 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken is returned for every verification failure. Callers
// never learn whether the token was expired, tampered or malformed.
var ErrInvalidToken = apperr.New(apperr.KindInvalidToken, "Invalid or expired token")

// Claims carries the identity fields embedded in an access token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig holds the immutable signing configuration. Both secrets
// are required; the process must refuse to start without them.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService issues and verifies signed identity assertions using
// HS256. Access and refresh tokens are signed with distinct secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService from injected secrets.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	access := strings.TrimSpace(cfg.AccessSecret)
	refresh := strings.TrimSpace(cfg.RefreshSecret)
	if access == "" {
		return nil, errors.New("auth: access token secret is not configured")
	}
	if refresh == "" {
		return nil, errors.New("auth: refresh token secret is not configured")
	}
	svc := &TokenService{
		accessSecret:  []byte(access),
		refreshSecret: []byte(refresh),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	if svc.accessTTL <= 0 {
		svc.accessTTL = defaultAccessTTL
	}
	if svc.refreshTTL <= 0 {
		svc.refreshTTL = defaultRefreshTTL
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IssueAccessToken signs an access token encoding id, email and role.
func (s *TokenService) IssueAccessToken(p Principal) (string, time.Time, error) {
	if strings.TrimSpace(p.ID) == "" {
		return "", time.Time{}, errors.New("auth: principal id is required")
	}
	now := s.now().UTC()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Email: p.Email,
		Role:  string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefreshToken signs a refresh token carrying only the subject id.
func (s *TokenService) IssueRefreshToken(userID string) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, errors.New("auth: user id is required")
	}
	now := s.now().UTC()
	exp := now.Add(s.refreshTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess checks signature and expiry of an access token and
// returns the principal encoded in it.
func (s *TokenService) VerifyAccess(token string) (Principal, error) {
	claims := &Claims{}
	if err := s.verify(token, claims, s.accessSecret); err != nil {
		return Principal{}, err
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	return Principal{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  role,
	}, nil
}

// VerifyRefresh checks a refresh token and returns the subject id.
// Role and email are deliberately absent: the caller re-fetches the
// current user record so a role change takes effect on refresh.
func (s *TokenService) VerifyRefresh(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := s.verify(token, claims, s.refreshSecret); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *TokenService) verify(token string, claims jwt.Claims, secret []byte) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return ErrInvalidToken
	}
	return nil
}
