package memory

import (
	"context"
	"sort"

	"github.com/cimillas/eventhub/internal/domain"
)

func (s *Store) FindReview(_ context.Context, eventID, reviewerID string) (*domain.EventReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.EventID == eventID && r.ReviewerID == reviewerID {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateReview(ctx context.Context, review domain.EventReview) error {
	return s.write(ctx, func() error {
		if _, ok := s.events[review.EventID]; !ok {
			return domain.ErrEventNotFound
		}
		for _, r := range s.reviews {
			if r.EventID == review.EventID && r.ReviewerID == review.ReviewerID {
				return domain.ErrAlreadyReviewed
			}
		}
		s.reviews[review.ID] = review
		return nil
	})
}

func (s *Store) DeleteReviewsByEvent(ctx context.Context, eventID string) error {
	return s.write(ctx, func() error {
		for id, r := range s.reviews {
			if r.EventID == eventID {
				delete(s.reviews, id)
			}
		}
		return nil
	})
}

// ListReviews returns the event's reviews, newest first.
func (s *Store) ListReviews(_ context.Context, eventID string) ([]domain.EventReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.EventReview{}
	for _, r := range s.reviews {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AverageRating(ctx context.Context, eventID string) (*float64, error) {
	reviews, err := s.ListReviews(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return domain.AverageRating(reviews), nil
}
