package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omkarr10/Vagabond/internal/domain"
	"github.com/omkarr10/Vagabond/internal/dto"
	"github.com/omkarr10/Vagabond/internal/logger"
	"github.com/omkarr10/Vagabond/internal/middleware"
)

// stubAuthService implements service.AuthService with function hooks
type stubAuthService struct {
	registerFn func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	loginFn    func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	verifyFn   func(ctx context.Context, accessToken string) (*domain.Claims, error)
	getUserFn  func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return s.registerFn(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) Verify(ctx context.Context, accessToken string) (*domain.Claims, error) {
	return s.verifyFn(ctx, accessToken)
}

func (s *stubAuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func newAuthRouter(svc *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, logger.Get())

	router := gin.New()
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.POST("/api/auth/refresh", h.Refresh)
	router.POST("/api/auth/logout", h.Logout)
	// Tests stand in for the bearer middleware by seeding the context
	router.GET("/api/auth/me", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
	}, h.Me)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthHandler_Register(t *testing.T) {
	validBody := gin.H{
		"username": "marco",
		"email":    "marco@example.com",
		"password": "polo-travels-far",
	}

	t.Run("success returns 201", func(t *testing.T) {
		svc := &stubAuthService{
			registerFn: func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
				return &dto.AuthResponse{
					AccessToken:  "access",
					RefreshToken: "refresh",
					ExpiresIn:    3600,
					User:         dto.UserResponse{ID: "user-1", Username: req.Username},
				}, nil
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/register", validBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
	})

	t.Run("duplicate returns 400", func(t *testing.T) {
		svc := &stubAuthService{
			registerFn: func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
				return nil, domain.ErrUserExists
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/register", validBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "USER_EXISTS", env.Error.Code)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		w := doJSON(t, newAuthRouter(&stubAuthService{}), http.MethodPost, "/api/auth/register", gin.H{
			"username": "marco",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad username characters return 400", func(t *testing.T) {
		w := doJSON(t, newAuthRouter(&stubAuthService{}), http.MethodPost, "/api/auth/register", gin.H{
			"username": "marco polo!",
			"email":    "marco@example.com",
			"password": "polo-travels-far",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("bad credentials return 400", func(t *testing.T) {
		svc := &stubAuthService{
			loginFn: func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
				return nil, domain.ErrInvalidCredentials
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/login", gin.H{
			"username": "marco",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	})

	t.Run("success returns tokens", func(t *testing.T) {
		svc := &stubAuthService{
			loginFn: func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
				return &dto.AuthResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/login", gin.H{
			"username": "marco",
			"password": "polo-travels-far",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), "access_token")
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("invalid token returns 401", func(t *testing.T) {
		svc := &stubAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
				return nil, domain.ErrInvalidToken
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/refresh", gin.H{
			"refresh_token": "bad",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token returns 401", func(t *testing.T) {
		svc := &stubAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
				return nil, domain.ErrTokenExpired
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/refresh", gin.H{
			"refresh_token": "expired",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown subject returns 404", func(t *testing.T) {
		svc := &stubAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
				return nil, domain.ErrUserNotFound
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/refresh", gin.H{
			"refresh_token": "orphaned",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("success returns new access token only", func(t *testing.T) {
		svc := &stubAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
				return &dto.RefreshResponse{AccessToken: "fresh", ExpiresIn: 3600}, nil
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodPost, "/api/auth/refresh", gin.H{
			"refresh_token": "valid",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.Contains(t, string(env.Data), "fresh")
		assert.NotContains(t, string(env.Data), "refresh_token")
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("never exposes password material", func(t *testing.T) {
		svc := &stubAuthService{
			getUserFn: func(ctx context.Context, id string) (*domain.User, error) {
				return &domain.User{
					ID:           "user-1",
					Username:     "marco",
					Email:        "marco@example.com",
					PasswordHash: "$2a$10$secret-hash-material",
					Role:         domain.RoleUser,
				}, nil
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodGet, "/api/auth/me", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "marco")
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "secret-hash-material")
	})

	t.Run("deleted subject returns 404", func(t *testing.T) {
		svc := &stubAuthService{
			getUserFn: func(ctx context.Context, id string) (*domain.User, error) {
				return nil, nil
			},
		}
		w := doJSON(t, newAuthRouter(svc), http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	w := doJSON(t, newAuthRouter(&stubAuthService{}), http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
}
