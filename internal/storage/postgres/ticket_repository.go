package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cimillas/eventhub/internal/domain"
)

type TicketRepository struct {
	conn
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{conn{pool: pool}}
}

func (r *TicketRepository) FindTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	const query = `
SELECT id, event_id, user_id, price::text, purchase_date
FROM tickets
WHERE event_id = $1 AND user_id = $2`

	var (
		t     domain.Ticket
		price string
	)
	err := r.queryRow(ctx, query, eventID, userID).Scan(&t.ID, &t.EventID, &t.UserID, &price, &t.PurchaseDate)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if t.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse ticket price: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) CountTickets(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&n); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}

// CreateTicket reports ErrTicketExists without raising a unique violation,
// so the surrounding transaction stays usable for a follow-up read.
func (r *TicketRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, user_id, price, purchase_date)
VALUES ($1, $2, $3, $4::numeric, $5)
ON CONFLICT (event_id, user_id) DO NOTHING`

	tag, err := r.exec(ctx, stmt, t.ID, t.EventID, t.UserID, t.Price.StringFixed(2), t.PurchaseDate)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if constraint, ok := foreignKeyViolation(err); ok {
			if constraint == "tickets_user_id_fkey" {
				return domain.ErrUserNotFound
			}
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketExists
	}
	return nil
}

func (r *TicketRepository) DeleteTicketsByEvent(ctx context.Context, eventID string) error {
	if _, err := r.exec(ctx, `DELETE FROM tickets WHERE event_id = $1`, eventID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete tickets: %w", err)
	}
	return nil
}

func (r *TicketRepository) ListTicketsByUser(ctx context.Context, userID string) ([]domain.TicketWithEvent, error) {
	query := `
SELECT ` + eventColumns + `, t.id, t.user_id, t.price::text, t.purchase_date
FROM tickets t
JOIN events e ON e.id = t.event_id
JOIN venues v ON v.id = e.venue_id
WHERE t.user_id = $1
ORDER BY t.purchase_date DESC, t.id`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	out := []domain.TicketWithEvent{}
	for rows.Next() {
		var (
			t     domain.Ticket
			price string
		)
		e, err := scanEvent(rows, &t.ID, &t.UserID, &price, &t.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse ticket price: %w", err)
		}
		t.EventID = e.ID
		out = append(out, domain.TicketWithEvent{Ticket: t, Event: e})
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return out, nil
}

func (r *TicketRepository) TicketedEventIDs(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error) {
	held := map[string]bool{}
	if len(eventIDs) == 0 {
		return held, nil
	}

	rows, err := r.query(ctx, `SELECT event_id FROM tickets WHERE user_id = $1 AND event_id = ANY($2::uuid[])`, userID, eventIDs)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("ticketed events: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("ticketed events: %w", err)
	}
	for _, id := range ids {
		held[id] = true
	}
	return held, nil
}
