package domain

import "errors"

var (
	// ErrUserExists is returned when a username or email is already taken.
	// The database unique constraints are the source of truth for this.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for an unknown username or a
	// password that does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a token subject no longer exists
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidToken covers signature mismatch and malformed tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for a token past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrItineraryNotFound is returned for an unknown itinerary id or one
	// owned by another user (deliberately indistinguishable)
	ErrItineraryNotFound = errors.New("itinerary not found")

	// ErrPlannerUnavailable is returned when the itinerary model API fails
	ErrPlannerUnavailable = errors.New("planner unavailable")
)
