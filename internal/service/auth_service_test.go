package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omkarr10/Vagabond/internal/domain"
	"github.com/omkarr10/Vagabond/internal/dto"
	"github.com/omkarr10/Vagabond/internal/password"
	"github.com/omkarr10/Vagabond/internal/token"
)

// mockUserRepo implements repository.UserRepository with function hooks
type mockUserRepo struct {
	createFn           func(ctx context.Context, user *domain.User) error
	getByIDFn          func(ctx context.Context, id string) (*domain.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*domain.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*domain.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func newTestAuthService(t *testing.T, repo *mockUserRepo) (AuthService, *token.Manager) {
	t.Helper()
	tokens, err := token.NewManager(&token.Config{Secret: "test-secret"})
	require.NoError(t, err)
	// bcrypt MinCost keeps the tests fast
	hasher := password.NewHasher(4, 2)
	return NewAuthService(repo, tokens, hasher), tokens
}

func TestAuthService_Register(t *testing.T) {
	req := &dto.RegisterRequest{
		Username: "marco",
		Email:    "marco@example.com",
		Password: "polo-travels-far",
	}

	t.Run("success issues verifiable tokens", func(t *testing.T) {
		var created *domain.User
		repo := &mockUserRepo{
			createFn: func(ctx context.Context, user *domain.User) error {
				created = user
				return nil
			},
		}
		svc, tokens := newTestAuthService(t, repo)

		resp, err := svc.Register(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, domain.RoleUser, created.Role)
		assert.NotEqual(t, req.Password, created.PasswordHash)

		claims, err := tokens.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, created.ID, claims.UserID)
		assert.Equal(t, domain.RoleUser, claims.Role)

		subject, err := tokens.VerifyRefresh(resp.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, created.ID, subject)

		assert.Equal(t, created.ID, resp.User.ID)
		assert.Equal(t, "marco", resp.User.Username)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := &mockUserRepo{
			existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
				return true, nil
			},
		}
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := &mockUserRepo{
			existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
				return true, nil
			},
		}
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})

	t.Run("insert conflict wins over clean pre-check", func(t *testing.T) {
		// Simulates the concurrent-registration race: the pre-checks see
		// nothing but the unique index rejects the insert.
		repo := &mockUserRepo{
			createFn: func(ctx context.Context, user *domain.User) error {
				return domain.ErrUserExists
			},
		}
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	hasher := password.NewHasher(4, 2)
	hash, err := hasher.Hash(context.Background(), "polo-travels-far")
	require.NoError(t, err)

	stored := &domain.User{
		ID:           "user-1",
		Username:     "marco",
		Email:        "marco@example.com",
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	t.Run("success", func(t *testing.T) {
		repo := &mockUserRepo{
			getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
				if username == "marco" {
					return stored, nil
				}
				return nil, nil
			},
		}
		svc, tokens := newTestAuthService(t, repo)

		resp, err := svc.Login(context.Background(), &dto.LoginRequest{
			Username: "marco",
			Password: "polo-travels-far",
		})
		require.NoError(t, err)

		claims, err := tokens.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestAuthService(t, &mockUserRepo{})

		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Username: "nobody",
			Password: "whatever-password",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &mockUserRepo{
			getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
				return stored, nil
			},
		}
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Username: "marco",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("username match is case-sensitive", func(t *testing.T) {
		repo := &mockUserRepo{
			getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
				if username == "marco" {
					return stored, nil
				}
				return nil, nil
			},
		}
		svc, _ := newTestAuthService(t, repo)

		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Username: "Marco",
			Password: "polo-travels-far",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("mints access token with current role", func(t *testing.T) {
		// The user was promoted after the refresh token was issued; the new
		// access token must carry the current role, not the original one.
		repo := &mockUserRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
				if id == "user-1" {
					return &domain.User{ID: "user-1", Username: "marco", Role: domain.RoleAdmin}, nil
				}
				return nil, nil
			},
		}
		svc, tokens := newTestAuthService(t, repo)

		refreshToken, err := tokens.IssueRefresh("user-1")
		require.NoError(t, err)

		resp, err := svc.Refresh(context.Background(), refreshToken)
		require.NoError(t, err)

		claims, err := tokens.Verify(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("unknown subject", func(t *testing.T) {
		svc, tokens := newTestAuthService(t, &mockUserRepo{})

		refreshToken, err := tokens.IssueRefresh("ghost")
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), refreshToken)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("tampered token", func(t *testing.T) {
		svc, tokens := newTestAuthService(t, &mockUserRepo{})

		refreshToken, err := tokens.IssueRefresh("user-1")
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), refreshToken+"x")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestAuthService_Verify(t *testing.T) {
	svc, tokens := newTestAuthService(t, &mockUserRepo{})

	accessToken, err := tokens.Issue("user-1", domain.RoleUser)
	require.NoError(t, err)

	claims, err := svc.Verify(context.Background(), accessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = svc.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
