package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/eventhub/internal/domain"
)

type EventRepository struct {
	conn
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{conn{pool: pool}}
}

// eventColumns selects an event joined with its venue as "e" and "v".
const eventColumns = `
e.id, e.name, e.description, e.date, e.start_time, e.end_time, e.is_public, e.location,
e.max_participants, e.organizer_id, e.venue_id, e.pub_date, e.status,
v.name, v.is_virtual, v.address, v.capacity, v.virtual_meeting_link`

const eventFrom = `FROM events e JOIN venues v ON v.id = e.venue_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads eventColumns followed by any extra destinations.
func scanEvent(row rowScanner, extra ...any) (domain.Event, error) {
	var (
		e          domain.Event
		start, end pgtype.Time
	)
	dest := []any{
		&e.ID, &e.Name, &e.Description, &e.Date, &start, &end, &e.IsPublic, &e.Location,
		&e.MaxParticipants, &e.OrganizerID, &e.VenueID, &e.PubDate, &e.Status,
		&e.Venue.Name, &e.Venue.IsVirtual, &e.Venue.Address, &e.Venue.Capacity, &e.Venue.VirtualMeetingLink,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Event{}, err
	}
	e.Date = domain.DateOnly(e.Date)
	e.StartTime = fromPgTime(start)
	e.EndTime = fromPgTime(end)
	e.Venue.ID = e.VenueID
	return e, nil
}

func toPgTime(t domain.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) domain.TimeOfDay {
	return domain.TimeOfDayFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return r.getEvent(ctx, `SELECT `+eventColumns+` `+eventFrom+` WHERE e.id = $1`, eventID)
}

func (r *EventRepository) GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error) {
	return r.getEvent(ctx, `SELECT `+eventColumns+` `+eventFrom+` WHERE e.id = $1 FOR UPDATE OF e`, eventID)
}

func (r *EventRepository) getEvent(ctx context.Context, query, eventID string) (domain.Event, error) {
	e, err := scanEvent(r.queryRow(ctx, query, eventID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) ListPublicEvents(ctx context.Context, nameQuery string) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` ` + eventFrom + `
WHERE e.is_public AND ($1 = '' OR strpos(lower(e.name), lower($1)) > 0)
ORDER BY e.pub_date DESC, e.id`
	return r.listEvents(ctx, query, nameQuery)
}

func (r *EventRepository) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` ` + eventFrom + `
WHERE e.organizer_id = $1
ORDER BY e.pub_date DESC, e.id`
	return r.listEvents(ctx, query, organizerID)
}

func (r *EventRepository) listEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) CreateVenue(ctx context.Context, v domain.Venue) error {
	const stmt = `
INSERT INTO venues (id, name, is_virtual, address, capacity, virtual_meeting_link)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.exec(ctx, stmt, v.ID, v.Name, v.IsVirtual, v.Address, v.Capacity, v.VirtualMeetingLink); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

func (r *EventRepository) UpdateVenue(ctx context.Context, v domain.Venue) error {
	const stmt = `
UPDATE venues
SET name = $2, is_virtual = $3, address = $4, capacity = $5, virtual_meeting_link = $6
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, v.ID, v.Name, v.IsVirtual, v.Address, v.Capacity, v.VirtualMeetingLink)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

func (r *EventRepository) DeleteVenue(ctx context.Context, venueID string) error {
	if _, err := r.exec(ctx, `DELETE FROM venues WHERE id = $1`, venueID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if _, ok := foreignKeyViolation(err); ok {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, e domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, description, date, start_time, end_time, is_public, location,
	max_participants, organizer_id, venue_id, pub_date, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.exec(ctx, stmt,
		e.ID,
		e.Name,
		e.Description,
		domain.DateOnly(e.Date),
		toPgTime(e.StartTime),
		toPgTime(e.EndTime),
		e.IsPublic,
		e.Location,
		e.MaxParticipants,
		e.OrganizerID,
		e.VenueID,
		e.PubDate,
		string(e.Status),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if constraint, ok := foreignKeyViolation(err); ok {
			if constraint == "events_venue_id_fkey" {
				return domain.ErrVenueNotFound
			}
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) UpdateEvent(ctx context.Context, e domain.Event) error {
	const stmt = `
UPDATE events
SET name = $2, description = $3, date = $4, start_time = $5, end_time = $6, is_public = $7,
	location = $8, max_participants = $9, status = $10
WHERE id = $1`

	tag, err := r.exec(ctx, stmt,
		e.ID,
		e.Name,
		e.Description,
		domain.DateOnly(e.Date),
		toPgTime(e.StartTime),
		toPgTime(e.EndTime),
		e.IsPublic,
		e.Location,
		e.MaxParticipants,
		string(e.Status),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := r.exec(ctx, `DELETE FROM events WHERE id = $1`, eventID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if _, ok := foreignKeyViolation(err); ok {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
