package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FreeTicketPrice is recorded on every ticket; no payments are taken.
var FreeTicketPrice = decimal.New(0, -2)

// Ticket records a user's registration for an event.
type Ticket struct {
	ID           string
	EventID      string
	UserID       string
	Price        decimal.Decimal
	PurchaseDate time.Time
}

// TicketWithEvent is a ticket with its event (and the event's venue) resolved.
type TicketWithEvent struct {
	Ticket Ticket
	Event  Event
}
