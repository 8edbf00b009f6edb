package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/eventhub/internal/domain"
)

type ReviewRepository struct {
	conn
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{conn{pool: pool}}
}

const reviewColumns = `id, event_id, reviewer_id, rating, text, created_at`

func scanReview(row rowScanner) (domain.EventReview, error) {
	var rv domain.EventReview
	err := row.Scan(&rv.ID, &rv.EventID, &rv.ReviewerID, &rv.Rating, &rv.Text, &rv.CreatedAt)
	return rv, err
}

func (r *ReviewRepository) FindReview(ctx context.Context, eventID, reviewerID string) (*domain.EventReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM event_reviews WHERE event_id = $1 AND reviewer_id = $2`
	rv, err := scanReview(r.queryRow(ctx, query, eventID, reviewerID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &rv, nil
}

func (r *ReviewRepository) CreateReview(ctx context.Context, rv domain.EventReview) error {
	const stmt = `
INSERT INTO event_reviews (id, event_id, reviewer_id, rating, text, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.exec(ctx, stmt, rv.ID, rv.EventID, rv.ReviewerID, rv.Rating, rv.Text, rv.CreatedAt); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrAlreadyReviewed
		}
		if constraint, ok := foreignKeyViolation(err); ok {
			if constraint == "event_reviews_reviewer_id_fkey" {
				return domain.ErrUserNotFound
			}
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) DeleteReviewsByEvent(ctx context.Context, eventID string) error {
	if _, err := r.exec(ctx, `DELETE FROM event_reviews WHERE event_id = $1`, eventID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete reviews: %w", err)
	}
	return nil
}

func (r *ReviewRepository) ListReviews(ctx context.Context, eventID string) ([]domain.EventReview, error) {
	query := `SELECT ` + reviewColumns + ` FROM event_reviews WHERE event_id = $1 ORDER BY created_at DESC, id`
	rows, err := r.query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.EventReview{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// AverageRating is nil when the event has no reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, eventID string) (*float64, error) {
	var avg *float64
	if err := r.queryRow(ctx, `SELECT AVG(rating)::float8 FROM event_reviews WHERE event_id = $1`, eventID).Scan(&avg); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}
