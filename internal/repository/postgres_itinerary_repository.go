package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// PostgresItineraryRepository implements ItineraryRepository using PostgreSQL
type PostgresItineraryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresItineraryRepository creates a new PostgresItineraryRepository
func NewPostgresItineraryRepository(pool *pgxpool.Pool) *PostgresItineraryRepository {
	return &PostgresItineraryRepository{pool: pool}
}

// Create inserts a new itinerary
func (r *PostgresItineraryRepository) Create(ctx context.Context, it *domain.Itinerary) error {
	query := `
		INSERT INTO itineraries (id, user_id, destination, duration, budget, interests, group_size, start_date, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		it.ID,
		it.UserID,
		it.Destination,
		it.Duration,
		it.Budget,
		it.Interests,
		it.GroupSize,
		it.StartDate,
		it.Plan,
		it.CreatedAt,
	)
	return err
}

// ListByUserID returns the user's itineraries, newest first
func (r *PostgresItineraryRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Itinerary, error) {
	query := `
		SELECT id, user_id, destination, duration, budget, interests, group_size, start_date, plan, created_at
		FROM itineraries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var itineraries []*domain.Itinerary
	for rows.Next() {
		it := &domain.Itinerary{}
		if err := rows.Scan(
			&it.ID,
			&it.UserID,
			&it.Destination,
			&it.Duration,
			&it.Budget,
			&it.Interests,
			&it.GroupSize,
			&it.StartDate,
			&it.Plan,
			&it.CreatedAt,
		); err != nil {
			return nil, err
		}
		itineraries = append(itineraries, it)
	}
	return itineraries, rows.Err()
}

// GetByID retrieves an itinerary owned by the given user
func (r *PostgresItineraryRepository) GetByID(ctx context.Context, id, userID string) (*domain.Itinerary, error) {
	query := `
		SELECT id, user_id, destination, duration, budget, interests, group_size, start_date, plan, created_at
		FROM itineraries
		WHERE id = $1 AND user_id = $2
	`
	it := &domain.Itinerary{}
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&it.ID,
		&it.UserID,
		&it.Destination,
		&it.Duration,
		&it.Budget,
		&it.Interests,
		&it.GroupSize,
		&it.StartDate,
		&it.Plan,
		&it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

// Delete removes an itinerary owned by the given user
func (r *PostgresItineraryRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
