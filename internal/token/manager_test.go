package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omkarr10/Vagabond/internal/domain"
)

func newTestManager(t *testing.T, cfg *Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg)
	require.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewManager(&Config{})
		assert.Error(t, err)

		_, err = NewManager(nil)
		assert.Error(t, err)
	})

	t.Run("defaults TTLs when unset", func(t *testing.T) {
		m := newTestManager(t, &Config{Secret: "test-secret"})
		assert.Equal(t, 7*24*time.Hour, m.AccessTokenTTL())
	})
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := newTestManager(t, &Config{Secret: "test-secret"})

	tokenString, err := m.Issue("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := m.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestManager_Verify(t *testing.T) {
	m := newTestManager(t, &Config{Secret: "test-secret"})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		tokenString, err := m.Issue("user-1", domain.RoleUser)
		require.NoError(t, err)

		_, err = m.Verify(tokenString + "x")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects token from another secret", func(t *testing.T) {
		other := newTestManager(t, &Config{Secret: "other-secret"})
		tokenString, err := other.Issue("user-1", domain.RoleUser)
		require.NoError(t, err)

		_, err = m.Verify(tokenString)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := newTestManager(t, &Config{
			Secret:         "test-secret",
			AccessTokenTTL: -time.Minute,
		})
		tokenString, err := expired.Issue("user-1", domain.RoleUser)
		require.NoError(t, err)

		_, err = m.Verify(tokenString)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})
}

func TestManager_VerifyRefresh(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		m := newTestManager(t, &Config{Secret: "test-secret"})

		tokenString, err := m.IssueRefresh("user-2")
		require.NoError(t, err)

		subject, err := m.VerifyRefresh(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "user-2", subject)
	})

	t.Run("refresh secret falls back to access secret", func(t *testing.T) {
		issuer := newTestManager(t, &Config{Secret: "shared-secret"})
		verifier := newTestManager(t, &Config{Secret: "shared-secret", RefreshSecret: ""})

		tokenString, err := issuer.IssueRefresh("user-3")
		require.NoError(t, err)

		subject, err := verifier.VerifyRefresh(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "user-3", subject)
	})

	t.Run("dedicated refresh secret rejects access-signed tokens", func(t *testing.T) {
		m := newTestManager(t, &Config{
			Secret:        "access-secret",
			RefreshSecret: "refresh-secret",
		})

		accessToken, err := m.Issue("user-4", domain.RoleUser)
		require.NoError(t, err)

		_, err = m.VerifyRefresh(accessToken)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("rejects expired refresh token", func(t *testing.T) {
		expired := newTestManager(t, &Config{
			Secret:          "test-secret",
			RefreshTokenTTL: -time.Minute,
		})
		tokenString, err := expired.IssueRefresh("user-5")
		require.NoError(t, err)

		_, err = expired.VerifyRefresh(tokenString)
		assert.ErrorIs(t, err, domain.ErrTokenExpired)
	})
}
