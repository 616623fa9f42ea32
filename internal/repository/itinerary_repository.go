package repository

import (
	"context"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// ItineraryRepository defines persistence operations for itineraries.
// Reads and deletes are scoped to the owning user; an itinerary belonging
// to another user is indistinguishable from a missing one.
type ItineraryRepository interface {
	Create(ctx context.Context, it *domain.Itinerary) error
	// ListByUserID returns the user's itineraries, newest first
	ListByUserID(ctx context.Context, userID string) ([]*domain.Itinerary, error)
	// GetByID retrieves an itinerary by id for the given owner, nil when not found
	GetByID(ctx context.Context, id, userID string) (*domain.Itinerary, error)
	// Delete removes an itinerary for the given owner, reporting whether a row was removed
	Delete(ctx context.Context, id, userID string) (bool, error)
}
