package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
	"github.com/cimillas/eventhub/internal/storage/memory"
)

func TestReviewService_SubmitReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clock.NewFixed(now)
	store := memory.New()
	organizer := addUser(t, store, "organizer", true)
	attendee := addUser(t, store, "attendee", false)
	stranger := addUser(t, store, "stranger", false)

	events := NewEventService(store, clk)
	past, err := events.CreateEvent(ctx, organizer, meetup(now.AddDate(0, 0, -3), 5), hallA())
	require.NoError(t, err)
	future, err := events.CreateEvent(ctx, organizer, meetup(now.AddDate(0, 0, 3), 5), hallA())
	require.NoError(t, err)

	registrations := NewRegistrationService(store, clk)
	for _, id := range []string{past.ID, future.ID} {
		_, err := registrations.BuyTicket(ctx, id, attendee)
		require.NoError(t, err)
	}

	svc := NewReviewService(store, clk, nil)

	t.Run("rating out of range", func(t *testing.T) {
		for _, rating := range []int{0, 6} {
			_, err := svc.SubmitReview(ctx, attendee, SubmitReviewInput{EventID: past.ID, Rating: rating})
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("event not yet started", func(t *testing.T) {
		_, err := svc.SubmitReview(ctx, attendee, SubmitReviewInput{EventID: future.ID, Rating: 5})
		assert.ErrorIs(t, err, domain.ErrEventNotStarted)
	})

	t.Run("reviewer without a ticket", func(t *testing.T) {
		_, err := svc.SubmitReview(ctx, stranger, SubmitReviewInput{EventID: past.ID, Rating: 5})
		assert.ErrorIs(t, err, domain.ErrTicketRequired)
	})

	t.Run("one review per attendee", func(t *testing.T) {
		review, err := svc.SubmitReview(ctx, attendee, SubmitReviewInput{EventID: past.ID, Rating: 5, Text: "  loved it "})
		require.NoError(t, err)
		assert.Equal(t, "loved it", review.Text)
		assert.Equal(t, now, review.CreatedAt)

		_, err = svc.SubmitReview(ctx, attendee, SubmitReviewInput{EventID: past.ID, Rating: 3})
		assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := svc.SubmitReview(ctx, attendee, SubmitReviewInput{EventID: "missing", Rating: 3})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
