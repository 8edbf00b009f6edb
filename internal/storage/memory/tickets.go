package memory

import (
	"context"
	"sort"

	"github.com/cimillas/eventhub/internal/domain"
)

func (s *Store) FindTicket(_ context.Context, eventID, userID string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tickets {
		if t.EventID == eventID && t.UserID == userID {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) CountTickets(_ context.Context, eventID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	return s.write(ctx, func() error {
		if _, ok := s.events[ticket.EventID]; !ok {
			return domain.ErrEventNotFound
		}
		if _, ok := s.users[ticket.UserID]; !ok {
			return domain.ErrUserNotFound
		}
		for _, t := range s.tickets {
			if t.EventID == ticket.EventID && t.UserID == ticket.UserID {
				return domain.ErrTicketExists
			}
		}
		s.tickets[ticket.ID] = ticket
		return nil
	})
}

func (s *Store) DeleteTicketsByEvent(ctx context.Context, eventID string) error {
	return s.write(ctx, func() error {
		for id, t := range s.tickets {
			if t.EventID == eventID {
				delete(s.tickets, id)
			}
		}
		return nil
	})
}

// ListTicketsByUser returns the user's tickets, most recent purchase first.
func (s *Store) ListTicketsByUser(_ context.Context, userID string) ([]domain.TicketWithEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.TicketWithEvent{}
	for _, t := range s.tickets {
		if t.UserID != userID {
			continue
		}
		event, err := s.eventLocked(t.EventID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TicketWithEvent{Ticket: t, Event: event})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Ticket, out[j].Ticket
		if !a.PurchaseDate.Equal(b.PurchaseDate) {
			return a.PurchaseDate.After(b.PurchaseDate)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) TicketedEventIDs(_ context.Context, userID string, eventIDs []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	held := map[string]bool{}
	for _, t := range s.tickets {
		if t.UserID == userID && wanted[t.EventID] {
			held[t.EventID] = true
		}
	}
	return held, nil
}
