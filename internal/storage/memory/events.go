package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cimillas/eventhub/internal/domain"
)

func (s *Store) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventLocked(eventID)
}

// GetEventForUpdate needs no row lock here: callers already hold the
// store-wide transaction lock.
func (s *Store) GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error) {
	return s.GetEvent(ctx, eventID)
}

func (s *Store) eventLocked(eventID string) (domain.Event, error) {
	event, ok := s.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	event.Venue = s.venues[event.VenueID]
	return event, nil
}

func (s *Store) CreateVenue(ctx context.Context, venue domain.Venue) error {
	return s.write(ctx, func() error {
		s.venues[venue.ID] = venue
		return nil
	})
}

func (s *Store) UpdateVenue(ctx context.Context, venue domain.Venue) error {
	return s.write(ctx, func() error {
		if _, ok := s.venues[venue.ID]; !ok {
			return domain.ErrVenueNotFound
		}
		s.venues[venue.ID] = venue
		return nil
	})
}

func (s *Store) DeleteVenue(ctx context.Context, venueID string) error {
	return s.write(ctx, func() error {
		for _, e := range s.events {
			if e.VenueID == venueID {
				return domain.ErrConflict
			}
		}
		delete(s.venues, venueID)
		return nil
	})
}

func (s *Store) CreateEvent(ctx context.Context, event domain.Event) error {
	return s.write(ctx, func() error {
		if _, ok := s.venues[event.VenueID]; !ok {
			return domain.ErrVenueNotFound
		}
		if _, ok := s.users[event.OrganizerID]; !ok {
			return domain.ErrUserNotFound
		}
		event.Venue = domain.Venue{}
		s.events[event.ID] = event
		return nil
	})
}

func (s *Store) UpdateEvent(ctx context.Context, event domain.Event) error {
	return s.write(ctx, func() error {
		if _, ok := s.events[event.ID]; !ok {
			return domain.ErrEventNotFound
		}
		event.Venue = domain.Venue{}
		s.events[event.ID] = event
		return nil
	})
}

func (s *Store) DeleteEvent(ctx context.Context, eventID string) error {
	return s.write(ctx, func() error {
		for _, t := range s.tickets {
			if t.EventID == eventID {
				return domain.ErrConflict
			}
		}
		for _, r := range s.reviews {
			if r.EventID == eventID {
				return domain.ErrConflict
			}
		}
		delete(s.events, eventID)
		return nil
	})
}

func (s *Store) ListPublicEvents(_ context.Context, nameQuery string) ([]domain.Event, error) {
	needle := strings.ToLower(strings.TrimSpace(nameQuery))

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEventsLocked(func(e domain.Event) bool {
		return e.IsPublic && (needle == "" || strings.Contains(strings.ToLower(e.Name), needle))
	}), nil
}

func (s *Store) ListEventsByOrganizer(_ context.Context, organizerID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEventsLocked(func(e domain.Event) bool {
		return e.OrganizerID == organizerID
	}), nil
}

// listEventsLocked returns matching events newest pub_date first.
func (s *Store) listEventsLocked(match func(domain.Event) bool) []domain.Event {
	out := []domain.Event{}
	for _, e := range s.events {
		if !match(e) {
			continue
		}
		e.Venue = s.venues[e.VenueID]
		out = append(out, e)
	}
	sortEventsNewestFirst(out)
	return out
}

func sortEventsNewestFirst(events []domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].PubDate.Equal(events[j].PubDate) {
			return events[i].PubDate.After(events[j].PubDate)
		}
		return events[i].ID < events[j].ID
	})
}
