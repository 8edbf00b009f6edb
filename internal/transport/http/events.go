package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/domain"
)

// EventQueries is the read side needed by the event endpoints.
type EventQueries interface {
	ListPublicEventsFor(ctx context.Context, query string, viewer *domain.User) (app.PublicListing, error)
	EventDetails(ctx context.Context, eventID string, viewer *domain.User) (app.EventDetails, error)
	ListEventsForOrganizer(ctx context.Context, organizer domain.User) ([]domain.Event, error)
}

// EventManager is the write side needed by the event endpoints.
type EventManager interface {
	CreateEvent(ctx context.Context, organizer domain.User, ev app.EventInput, vn app.VenueInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.User, eventID string, ev app.EventInput, vn app.VenueInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, actor domain.User, eventID string) error
}

// HandleListEvents serves the public listing, filtered by ?q= on the name.
func HandleListEvents(svc EventQueries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.ListPublicEventsFor(r.Context(), r.URL.Query().Get("q"), userFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		resp := listingResponse{
			Events: make([]listingItem, 0, len(listing.Events)),
			Today:  listing.Today.Format(dateLayout),
		}
		for _, row := range listing.Events {
			resp.Events = append(resp.Events, listingItem{eventResponse: newEventResponse(row.Event), HasTicket: row.HasTicket})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleEventDetails(svc EventQueries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := svc.EventDetails(r.Context(), mux.Vars(r)["id"], userFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newDetailsResponse(details))
	}
}

// HandleDashboard lists every event the caller organizes, private ones included.
func HandleDashboard(svc EventQueries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEventsForOrganizer(r.Context(), *userFromContext(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": newEventResponses(events)})
	}
}

func HandleCreateEvent(svc EventManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, vn, ok := decodeEventRequest(w, r)
		if !ok {
			return
		}
		event, err := svc.CreateEvent(r.Context(), *userFromContext(r.Context()), ev, vn)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newEventResponse(event))
	}
}

func HandleUpdateEvent(svc EventManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, vn, ok := decodeEventRequest(w, r)
		if !ok {
			return
		}
		event, err := svc.UpdateEvent(r.Context(), *userFromContext(r.Context()), mux.Vars(r)["id"], ev, vn)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleDeleteEvent(svc EventManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteEvent(r.Context(), *userFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeEventRequest(w http.ResponseWriter, r *http.Request) (app.EventInput, app.VenueInput, bool) {
	var req eventRequest
	if !decodeAndValidate(w, r, &req) {
		return app.EventInput{}, app.VenueInput{}, false
	}
	ev, vn, err := req.toInput()
	if err != nil {
		writeServiceError(w, r, err)
		return app.EventInput{}, app.VenueInput{}, false
	}
	return ev, vn, true
}
