package app

import (
	"context"
	"strings"
	"time"

	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
)

type ReviewRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	FindTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error)
	FindReview(ctx context.Context, eventID, reviewerID string) (*domain.EventReview, error)
	CreateReview(ctx context.Context, review domain.EventReview) error
}

type ReviewService struct {
	repo     ReviewRepository
	clock    clock.Clock
	location *time.Location
}

func NewReviewService(repo ReviewRepository, clk clock.Clock, loc *time.Location) *ReviewService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReviewService{
		repo:     repo,
		clock:    clk,
		location: loc,
	}
}

type SubmitReviewInput struct {
	EventID string
	Rating  int
	Text    string
}

// SubmitReview records the reviewer's single review of an event they hold a
// ticket for. The event must already have started (its date is today or earlier).
func (s *ReviewService) SubmitReview(ctx context.Context, reviewer domain.User, in SubmitReviewInput) (domain.EventReview, error) {
	if reviewer.ID == "" {
		return domain.EventReview{}, domain.ErrUnauthenticated
	}

	review := domain.EventReview{
		ID:         newID(),
		EventID:    in.EventID,
		ReviewerID: reviewer.ID,
		Rating:     in.Rating,
		Text:       strings.TrimSpace(in.Text),
		CreatedAt:  s.clock.Now(),
	}
	if err := review.Validate(); err != nil {
		return domain.EventReview{}, err
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if domain.DateOnly(event.Date).After(clock.Today(s.clock, s.location)) {
			return domain.ErrEventNotStarted
		}

		ticket, err := s.repo.FindTicket(txCtx, event.ID, reviewer.ID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return domain.ErrTicketRequired
		}

		existing, err := s.repo.FindReview(txCtx, event.ID, reviewer.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyReviewed
		}
		return s.repo.CreateReview(txCtx, review)
	})
	if err != nil {
		return domain.EventReview{}, err
	}
	return review, nil
}
