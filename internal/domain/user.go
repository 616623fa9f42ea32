package domain

import (
	"time"
)

// Role represents user role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user entity. Username and email are globally unique;
// the unique indexes in the database are the authoritative check, the
// service-level lookups are advisory only.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until access token expires
}

// Claims represents the identity extracted from a verified access token
type Claims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}
