package app

import (
	"context"
	"strings"
	"time"

	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
)

type QueryRepository interface {
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// ListPublicEvents filters on a case-insensitive name substring when
	// nameQuery is non-empty. Newest pub_date first.
	ListPublicEvents(ctx context.Context, nameQuery string) ([]domain.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	CountTickets(ctx context.Context, eventID string) (int, error)
	FindTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error)
	TicketedEventIDs(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error)
	ListReviews(ctx context.Context, eventID string) ([]domain.EventReview, error)
	FindReview(ctx context.Context, eventID, reviewerID string) (*domain.EventReview, error)
	AverageRating(ctx context.Context, eventID string) (*float64, error)
}

type QueryService struct {
	repo     QueryRepository
	clock    clock.Clock
	location *time.Location
}

type QueryServiceOption func(*QueryService)

// WithLocation sets the zone used to decide what "today" is.
func WithLocation(loc *time.Location) QueryServiceOption {
	return func(s *QueryService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewQueryService(repo QueryRepository, clk clock.Clock, opts ...QueryServiceOption) *QueryService {
	svc := &QueryService{
		repo:     repo,
		clock:    clk,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *QueryService) ListPublicEvents(ctx context.Context, query string) ([]domain.Event, error) {
	return s.repo.ListPublicEvents(ctx, strings.TrimSpace(query))
}

// EventListing is a public listing row annotated for the viewer.
type EventListing struct {
	Event     domain.Event
	HasTicket bool
}

type PublicListing struct {
	Events []EventListing
	Today  time.Time
}

// ListPublicEventsFor is ListPublicEvents with each row marked when the
// viewer already holds a ticket. viewer may be nil.
func (s *QueryService) ListPublicEventsFor(ctx context.Context, query string, viewer *domain.User) (PublicListing, error) {
	events, err := s.ListPublicEvents(ctx, query)
	if err != nil {
		return PublicListing{}, err
	}

	held := map[string]bool{}
	if viewer != nil && viewer.ID != "" && len(events) > 0 {
		ids := make([]string, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		held, err = s.repo.TicketedEventIDs(ctx, viewer.ID, ids)
		if err != nil {
			return PublicListing{}, err
		}
	}

	rows := make([]EventListing, 0, len(events))
	for _, e := range events {
		rows = append(rows, EventListing{Event: e, HasTicket: held[e.ID]})
	}
	return PublicListing{Events: rows, Today: clock.Today(s.clock, s.location)}, nil
}

func (s *QueryService) ListEventsForOrganizer(ctx context.Context, organizer domain.User) ([]domain.Event, error) {
	if organizer.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListEventsByOrganizer(ctx, organizer.ID)
}

// EventDetails is everything a detail page shows.
type EventDetails struct {
	Event            domain.Event
	ViewerTicket     *domain.Ticket
	ViewerReview     *domain.EventReview
	RemainingTickets int
	// AverageRating is nil when the event has no reviews.
	AverageRating *float64
	Reviews       []domain.EventReview
	IsPast        bool
}

// EventDetails assembles the detail view. viewer may be nil for anonymous requests.
func (s *QueryService) EventDetails(ctx context.Context, eventID string, viewer *domain.User) (EventDetails, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return EventDetails{}, err
	}

	issued, err := s.repo.CountTickets(ctx, event.ID)
	if err != nil {
		return EventDetails{}, err
	}
	reviews, err := s.repo.ListReviews(ctx, event.ID)
	if err != nil {
		return EventDetails{}, err
	}
	avg, err := s.repo.AverageRating(ctx, event.ID)
	if err != nil {
		return EventDetails{}, err
	}

	details := EventDetails{
		Event:            event,
		RemainingTickets: domain.RemainingCapacity(event, issued),
		AverageRating:    avg,
		Reviews:          reviews,
		IsPast:           event.IsPast(clock.Today(s.clock, s.location)),
	}

	if viewer != nil && viewer.ID != "" {
		if details.ViewerTicket, err = s.repo.FindTicket(ctx, event.ID, viewer.ID); err != nil {
			return EventDetails{}, err
		}
		if details.ViewerReview, err = s.repo.FindReview(ctx, event.ID, viewer.ID); err != nil {
			return EventDetails{}, err
		}
	}
	return details, nil
}
