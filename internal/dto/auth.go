package dto

import (
	"regexp"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// RegisterRequest represents registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername validates allowed username characters
func (r *RegisterRequest) ValidateUsername() (bool, string) {
	if !usernameRegex.MatchString(r.Username) {
		return false, "Username may only contain letters, digits, '.', '_' and '-'"
	}
	return true, ""
}

// LoginRequest represents login request. Username matching is a
// case-sensitive exact lookup.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// RefreshResponse carries the newly minted access token. The refresh token
// is not rotated.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserResponse represents user data in responses. It deliberately has no
// password field; every path returning a user to a client goes through it.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// ToUserResponse converts a domain user to its redacted response form
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
