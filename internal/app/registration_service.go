package app

import (
	"context"
	"errors"

	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
)

type RegistrationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// GetEventForUpdate locks the event until the surrounding transaction ends.
	GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error)
	FindTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error)
	CountTickets(ctx context.Context, eventID string) (int, error)
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	ListTicketsByUser(ctx context.Context, userID string) ([]domain.TicketWithEvent, error)
}

// Recorder receives registration outcomes, typically for metrics.
type Recorder interface {
	TicketIssued(eventID string)
	CapacityRejected(eventID string)
}

type nopRecorder struct{}

func (nopRecorder) TicketIssued(string)     {}
func (nopRecorder) CapacityRejected(string) {}

type RegistrationService struct {
	repo     RegistrationRepository
	clock    clock.Clock
	recorder Recorder
}

type RegistrationServiceOption func(*RegistrationService)

// WithRecorder reports issued tickets and capacity rejections to r.
func WithRecorder(r Recorder) RegistrationServiceOption {
	return func(s *RegistrationService) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewRegistrationService(repo RegistrationRepository, clk clock.Clock, opts ...RegistrationServiceOption) *RegistrationService {
	svc := &RegistrationService{
		repo:     repo,
		clock:    clk,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type BuyTicketResult struct {
	Ticket  domain.Ticket
	Created bool
}

// BuyTicket issues a free ticket for user, or returns the one they already hold.
// The event row stays locked for the whole check-then-insert.
func (s *RegistrationService) BuyTicket(ctx context.Context, eventID string, user domain.User) (BuyTicketResult, error) {
	if user.ID == "" {
		return BuyTicketResult{}, domain.ErrUnauthenticated
	}

	now := s.clock.Now()
	var result BuyTicketResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindTicket(txCtx, event.ID, user.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = BuyTicketResult{Ticket: *existing}
			return nil
		}

		issued, err := s.repo.CountTickets(txCtx, event.ID)
		if err != nil {
			return err
		}
		if domain.RemainingCapacity(event, issued) == 0 {
			s.recorder.CapacityRejected(event.ID)
			return domain.ErrCapacityExceeded
		}

		ticket := domain.Ticket{
			ID:           newID(),
			EventID:      event.ID,
			UserID:       user.ID,
			Price:        domain.FreeTicketPrice,
			PurchaseDate: now,
		}
		if err := s.repo.CreateTicket(txCtx, ticket); err != nil {
			// A concurrent purchase by the same user won the unique constraint.
			if errors.Is(err, domain.ErrTicketExists) {
				existing, findErr := s.repo.FindTicket(txCtx, event.ID, user.ID)
				if findErr != nil {
					return findErr
				}
				if existing != nil {
					result = BuyTicketResult{Ticket: *existing}
					return nil
				}
			}
			return err
		}

		result = BuyTicketResult{Ticket: ticket, Created: true}
		return nil
	})
	if err != nil {
		return BuyTicketResult{}, err
	}
	if result.Created {
		s.recorder.TicketIssued(result.Ticket.EventID)
	}
	return result, nil
}

// ListTicketsForUser returns every ticket the user holds with event and venue resolved.
func (s *RegistrationService) ListTicketsForUser(ctx context.Context, user domain.User) ([]domain.TicketWithEvent, error) {
	if user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListTicketsByUser(ctx, user.ID)
}

// RemainingTickets is max_participants minus issued tickets, never negative.
func (s *RegistrationService) RemainingTickets(ctx context.Context, eventID string) (int, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	issued, err := s.repo.CountTickets(ctx, event.ID)
	if err != nil {
		return 0, err
	}
	return domain.RemainingCapacity(event, issued), nil
}

// HasTicket reports whether user already holds a ticket for the event.
func (s *RegistrationService) HasTicket(ctx context.Context, eventID string, user domain.User) (bool, error) {
	if user.ID == "" {
		return false, nil
	}
	ticket, err := s.repo.FindTicket(ctx, eventID, user.ID)
	if err != nil {
		return false, err
	}
	return ticket != nil, nil
}
