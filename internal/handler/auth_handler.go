package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omkarr10/Vagabond/internal/domain"
	"github.com/omkarr10/Vagabond/internal/dto"
	"github.com/omkarr10/Vagabond/internal/logger"
	"github.com/omkarr10/Vagabond/internal/middleware"
	"github.com/omkarr10/Vagabond/internal/response"
	"github.com/omkarr10/Vagabond/internal/service"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Username, email and password are required")
		return
	}

	if valid, msg := req.ValidateUsername(); !valid {
		response.BadRequest(c, msg)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			response.Error(c, http.StatusBadRequest, "USER_EXISTS", "Username or email already exists")
			return
		}
		h.log.Error("register failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Username and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// Unknown user and wrong password are indistinguishable
			response.Error(c, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		h.log.Error("login failed", zap.Error(err))
		response.InternalError(c)
		return
	}

	response.Success(c, result)
}

// Refresh mints a new access token from a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Refresh token is required")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired), errors.Is(err, domain.ErrInvalidToken):
			response.Unauthorized(c, "Invalid or expired refresh token")
		case errors.Is(err, domain.ErrUserNotFound):
			response.NotFound(c, "User not found")
		default:
			h.log.Error("refresh failed", zap.Error(err))
			response.InternalError(c)
		}
		return
	}

	response.Success(c, result)
}

// Logout acknowledges the logout. Tokens are stateless and not revoked;
// clients discard their copies and the tokens age out.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"logged_out": true})
}

// Me returns the authenticated user's profile
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("get user failed", zap.Error(err))
		response.InternalError(c)
		return
	}
	if user == nil {
		// Token subject no longer exists
		response.NotFound(c, "User not found")
		return
	}

	response.Success(c, dto.ToUserResponse(user))
}
