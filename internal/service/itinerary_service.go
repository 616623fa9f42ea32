package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/omkarr10/Vagabond/internal/domain"
	"github.com/omkarr10/Vagabond/internal/dto"
	"github.com/omkarr10/Vagabond/internal/planner"
	"github.com/omkarr10/Vagabond/internal/repository"
	"github.com/omkarr10/Vagabond/internal/telemetry"
)

// ItineraryService handles itinerary generation and retrieval. All reads
// and deletes are scoped to the owning user.
type ItineraryService interface {
	// Generate creates a new itinerary via the planner gateway and saves it
	Generate(ctx context.Context, userID string, req *dto.GenerateItineraryRequest, startDate time.Time) (*domain.Itinerary, error)
	// List returns the user's itineraries, newest first
	List(ctx context.Context, userID string) ([]*domain.Itinerary, error)
	// Get returns a single itinerary owned by the user, nil when not found
	Get(ctx context.Context, id, userID string) (*domain.Itinerary, error)
	// Delete removes an itinerary owned by the user
	Delete(ctx context.Context, id, userID string) error
}

type itineraryService struct {
	repo    repository.ItineraryRepository
	gateway planner.Gateway
}

// NewItineraryService creates a new ItineraryService
func NewItineraryService(repo repository.ItineraryRepository, gateway planner.Gateway) ItineraryService {
	return &itineraryService{
		repo:    repo,
		gateway: gateway,
	}
}

// Generate calls the planner and persists the result. The plan is stored
// exactly as the gateway returned it.
func (s *itineraryService) Generate(ctx context.Context, userID string, req *dto.GenerateItineraryRequest, startDate time.Time) (*domain.Itinerary, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.itinerary.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("destination", req.Destination),
		attribute.Int("duration", req.Duration),
		attribute.String("planner", s.gateway.Name()),
	)

	plan, err := s.gateway.GeneratePlan(ctx, &planner.Preferences{
		Destination: req.Destination,
		Duration:    req.Duration,
		Budget:      req.Budget,
		Interests:   req.Interests,
		GroupSize:   req.GroupSize,
		StartDate:   req.StartDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	it := &domain.Itinerary{
		ID:          uuid.New().String(),
		UserID:      userID,
		Destination: req.Destination,
		Duration:    req.Duration,
		Budget:      req.Budget,
		Interests:   req.Interests,
		GroupSize:   req.GroupSize,
		StartDate:   startDate,
		Plan:        plan,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, it); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("itinerary_id", it.ID))
	span.SetStatus(codes.Ok, "")
	return it, nil
}

// List returns the user's itineraries
func (s *itineraryService) List(ctx context.Context, userID string) ([]*domain.Itinerary, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.itinerary.list")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	its, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(its)))
	span.SetStatus(codes.Ok, "")
	return its, nil
}

// Get returns one itinerary. A foreign user's itinerary looks like a
// missing one; ownership is enforced in the query, not here.
func (s *itineraryService) Get(ctx context.Context, id, userID string) (*domain.Itinerary, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.itinerary.get")
	defer span.End()

	span.SetAttributes(
		attribute.String("itinerary_id", id),
		attribute.String("user_id", userID),
	)

	it, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if it == nil {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrItineraryNotFound
	}

	span.SetStatus(codes.Ok, "")
	return it, nil
}

// Delete removes an itinerary owned by the user
func (s *itineraryService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.itinerary.delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("itinerary_id", id),
		attribute.String("user_id", userID),
	)

	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !deleted {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrItineraryNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
