// Package token issues and verifies the signed credentials used by the
// session flow: a short-lived access token carrying subject id and role, and
// a long-lived refresh token carrying the subject id only. Tokens are
// stateless; validity is entirely a function of signature and expiry. There
// is no revocation list: logout does not invalidate outstanding tokens, they
// stay valid until natural expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// AccessClaims are the claims embedded in an access token
type AccessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// RefreshClaims are the claims embedded in a refresh token. No role claim:
// the current role is re-read from storage when a new access token is minted.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Config holds token manager configuration
type Config struct {
	Secret          string
	RefreshSecret   string // falls back to Secret when empty
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Manager signs and verifies access and refresh tokens with HS256
type Manager struct {
	secret          []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewManager creates a Manager. It fails when no signing secret is
// configured rather than silently issuing unverifiable tokens.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, fmt.Errorf("token signing secret is not configured")
	}

	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}

	m := &Manager{
		secret:          []byte(cfg.Secret),
		refreshSecret:   []byte(refreshSecret),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
	}
	if m.accessTokenTTL == 0 {
		m.accessTokenTTL = 7 * 24 * time.Hour
	}
	if m.refreshTokenTTL == 0 {
		m.refreshTokenTTL = 30 * 24 * time.Hour
	}
	return m, nil
}

// AccessTokenTTL returns the configured access token lifetime
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTokenTTL
}

// Issue creates a signed access token for the subject with the given role
func (m *Manager) Issue(subjectID string, role domain.Role) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenTTL)),
		},
		Role: string(role),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// IssueRefresh creates a signed refresh token for the subject
func (m *Manager) IssueRefresh(subjectID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
}

// Verify validates an access token and extracts the identity claims.
// Signature mismatch, malformed structure and past expiry all fail; callers
// must treat every failure as an authentication error.
func (m *Manager) Verify(tokenString string) (*domain.Claims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.secret); err != nil {
		return nil, err
	}

	return &domain.Claims{
		UserID: claims.Subject,
		Role:   domain.Role(claims.Role),
	}, nil
}

// VerifyRefresh validates a refresh token and returns the subject id
func (m *Manager) VerifyRefresh(tokenString string) (string, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.refreshSecret); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return domain.ErrInvalidToken
	}
	if !token.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}
