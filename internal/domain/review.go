package domain

import (
	"strings"
	"time"
)

const (
	MinRating        = 1
	MaxRating        = 5
	maxReviewTextLen = 2000
)

// EventReview is a reviewer's rating of an event they attended.
type EventReview struct {
	ID         string
	EventID    string
	ReviewerID string
	Rating     int
	Text       string
	CreatedAt  time.Time
}

func (r EventReview) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return Invalid("rating", "must be between 1 and 5")
	}
	if len(strings.TrimSpace(r.Text)) > maxReviewTextLen {
		return Invalid("text", "too long")
	}
	return nil
}

// AverageRating is the mean rating, or nil when there are no reviews.
func AverageRating(reviews []EventReview) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))
	return &avg
}
