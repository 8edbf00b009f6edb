package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/domain"
)

// TicketService is the minimal interface needed by the ticket endpoints.
type TicketService interface {
	BuyTicket(ctx context.Context, eventID string, user domain.User) (app.BuyTicketResult, error)
	ListTicketsForUser(ctx context.Context, user domain.User) ([]domain.TicketWithEvent, error)
	RemainingTickets(ctx context.Context, eventID string) (int, error)
}

// HandleBuyTicket answers 201 for a new ticket and 200 when the caller
// already held one.
func HandleBuyTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.BuyTicket(r.Context(), mux.Vars(r)["id"], *userFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, newTicketResponse(res.Ticket))
	}
}

func HandleMyTickets(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := svc.ListTicketsForUser(r.Context(), *userFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]ticketResponse, 0, len(tickets))
		for _, t := range tickets {
			item := newTicketResponse(t.Ticket)
			ev := newEventResponse(t.Event)
			item.Event = &ev
			resp = append(resp, item)
		}
		writeJSON(w, http.StatusOK, map[string]any{"tickets": resp})
	}
}

func HandleRemainingTickets(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := mux.Vars(r)["id"]
		remaining, err := svc.RemainingTickets(r.Context(), eventID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event_id": eventID, "remaining": remaining})
	}
}
