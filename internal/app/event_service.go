package app

import (
	"context"
	"strings"
	"time"

	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/domain"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error)
	CountTickets(ctx context.Context, eventID string) (int, error)
	CreateVenue(ctx context.Context, venue domain.Venue) error
	CreateEvent(ctx context.Context, event domain.Event) error
	UpdateVenue(ctx context.Context, venue domain.Venue) error
	UpdateEvent(ctx context.Context, event domain.Event) error
	DeleteTicketsByEvent(ctx context.Context, eventID string) error
	DeleteReviewsByEvent(ctx context.Context, eventID string) error
	DeleteEvent(ctx context.Context, eventID string) error
	DeleteVenue(ctx context.Context, venueID string) error
}

type EventService struct {
	repo  EventRepository
	clock clock.Clock
}

func NewEventService(repo EventRepository, clk clock.Clock) *EventService {
	return &EventService{
		repo:  repo,
		clock: clk,
	}
}

// EventInput carries the organizer-editable event fields.
type EventInput struct {
	Name            string
	Description     string
	Date            time.Time
	StartTime       domain.TimeOfDay
	EndTime         domain.TimeOfDay
	IsPublic        bool
	Location        string
	MaxParticipants int
	// Status defaults to upcoming when empty.
	Status domain.EventStatus
}

// VenueInput carries the fields of the venue owned by an event.
type VenueInput struct {
	Name               string
	IsVirtual          bool
	Address            *string
	Capacity           int
	VirtualMeetingLink *string
}

// CreateEvent creates the venue and the event together, or neither.
func (s *EventService) CreateEvent(ctx context.Context, organizer domain.User, ev EventInput, vn VenueInput) (domain.Event, error) {
	if !organizer.CanManageEvents() {
		return domain.Event{}, domain.ErrCannotManage
	}

	venue := applyVenueInput(domain.Venue{ID: newID()}, vn)
	event := applyEventInput(domain.Event{
		ID:          newID(),
		OrganizerID: organizer.ID,
		VenueID:     venue.ID,
		PubDate:     s.clock.Now(),
	}, ev)
	event.Venue = venue

	if err := event.Validate(); err != nil {
		return domain.Event{}, err
	}
	if err := venue.Validate(); err != nil {
		return domain.Event{}, err
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateVenue(txCtx, venue); err != nil {
			return err
		}
		return s.repo.CreateEvent(txCtx, event)
	})
	if err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

// UpdateEvent replaces the event's and its venue's fields.
func (s *EventService) UpdateEvent(ctx context.Context, actor domain.User, eventID string, ev EventInput, vn VenueInput) (domain.Event, error) {
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if err := authorizeMutation(actor, current); err != nil {
			return err
		}

		venue := applyVenueInput(current.Venue, vn)
		venue.ID = current.VenueID
		event := applyEventInput(current, ev)
		event.Venue = venue

		if err := event.Validate(); err != nil {
			return err
		}
		if err := venue.Validate(); err != nil {
			return err
		}

		// Tickets already issued stay valid, so capacity cannot drop below them.
		issued, err := s.repo.CountTickets(txCtx, current.ID)
		if err != nil {
			return err
		}
		if event.MaxParticipants < issued {
			return domain.Invalid("max_participants", "below tickets already issued")
		}

		if err := s.repo.UpdateVenue(txCtx, venue); err != nil {
			return err
		}
		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return result, nil
}

// DeleteEvent removes the event together with its venue, tickets and reviews.
func (s *EventService) DeleteEvent(ctx context.Context, actor domain.User, eventID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if err := authorizeMutation(actor, event); err != nil {
			return err
		}

		if err := s.repo.DeleteTicketsByEvent(txCtx, event.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteReviewsByEvent(txCtx, event.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteEvent(txCtx, event.ID); err != nil {
			return err
		}
		return s.repo.DeleteVenue(txCtx, event.VenueID)
	})
}

// authorizeMutation applies one policy to both edit and delete: the actor
// must be a manager and the event's organizer.
func authorizeMutation(actor domain.User, event domain.Event) error {
	if !actor.CanManageEvents() {
		return domain.ErrCannotManage
	}
	if !event.IsOrganizedBy(actor.ID) {
		return domain.ErrNotOrganizer
	}
	return nil
}

func applyEventInput(e domain.Event, in EventInput) domain.Event {
	e.Name = strings.TrimSpace(in.Name)
	e.Description = in.Description
	e.Date = domain.DateOnly(in.Date)
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.IsPublic = in.IsPublic
	e.Location = strings.TrimSpace(in.Location)
	e.MaxParticipants = in.MaxParticipants
	e.Status = in.Status
	if e.Status == "" {
		e.Status = domain.EventStatusUpcoming
	}
	return e
}

func applyVenueInput(v domain.Venue, in VenueInput) domain.Venue {
	v.Name = strings.TrimSpace(in.Name)
	v.IsVirtual = in.IsVirtual
	v.Address = in.Address
	v.Capacity = in.Capacity
	v.VirtualMeetingLink = in.VirtualMeetingLink
	return v
}
