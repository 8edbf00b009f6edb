package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/auth"
	"github.com/cimillas/eventhub/internal/domain"
)

var (
	testNow   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	manager   = domain.User{ID: "manager-1", Username: "manager", IsStaff: true}
	attendee  = domain.User{ID: "user-1", Username: "attendee"}
	testEvent = domain.Event{
		ID:              "event-1",
		Name:            "Go Meetup",
		Date:            time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		StartTime:       domain.NewTimeOfDay(9, 0),
		EndTime:         domain.NewTimeOfDay(10, 0),
		IsPublic:        true,
		MaxParticipants: 2,
		OrganizerID:     manager.ID,
		VenueID:         "venue-1",
		Venue:           domain.Venue{ID: "venue-1", Name: "Hall A", Capacity: 2},
		PubDate:         testNow,
		Status:          domain.EventStatusUpcoming,
	}
)

// stubServices implements every service interface the router needs. Each
// method returns the matching err field when set.
type stubServices struct {
	err error

	gotQuery  string
	gotViewer *domain.User
	gotEvent  app.EventInput
	gotVenue  app.VenueInput
	gotReview app.SubmitReviewInput
	buyResult app.BuyTicketResult
	loggedOut string
}

func (s *stubServices) Authenticate(_ context.Context, token string) (domain.User, error) {
	switch token {
	case "manager-token":
		return manager, nil
	case "user-token":
		return attendee, nil
	}
	return domain.User{}, domain.ErrUnauthenticated
}

func (s *stubServices) Register(_ context.Context, in app.RegisterInput) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	return domain.User{ID: "new-user", Username: in.Username, Email: in.Email, CreatedAt: testNow}, nil
}

func (s *stubServices) Login(_ context.Context, username, _ string) (app.LoginResult, error) {
	if s.err != nil {
		return app.LoginResult{}, s.err
	}
	return app.LoginResult{
		User:  domain.User{ID: "user-1", Username: username},
		Token: auth.Token{Value: "signed", ID: "jti", ExpiresAt: testNow.Add(time.Hour)},
	}, nil
}

func (s *stubServices) Logout(_ context.Context, token string) error {
	s.loggedOut = token
	return s.err
}

func (s *stubServices) Profile(_ context.Context, userID string) (domain.User, error) {
	if userID == manager.ID {
		return manager, nil
	}
	return attendee, nil
}

func (s *stubServices) ListPublicEventsFor(_ context.Context, query string, viewer *domain.User) (app.PublicListing, error) {
	s.gotQuery, s.gotViewer = query, viewer
	if s.err != nil {
		return app.PublicListing{}, s.err
	}
	return app.PublicListing{
		Events: []app.EventListing{{Event: testEvent, HasTicket: viewer != nil}},
		Today:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubServices) EventDetails(_ context.Context, eventID string, viewer *domain.User) (app.EventDetails, error) {
	s.gotViewer = viewer
	if s.err != nil {
		return app.EventDetails{}, s.err
	}
	return app.EventDetails{Event: testEvent, RemainingTickets: 2}, nil
}

func (s *stubServices) ListEventsForOrganizer(_ context.Context, organizer domain.User) ([]domain.Event, error) {
	return []domain.Event{testEvent}, s.err
}

func (s *stubServices) CreateEvent(_ context.Context, _ domain.User, ev app.EventInput, vn app.VenueInput) (domain.Event, error) {
	s.gotEvent, s.gotVenue = ev, vn
	if s.err != nil {
		return domain.Event{}, s.err
	}
	return testEvent, nil
}

func (s *stubServices) UpdateEvent(_ context.Context, _ domain.User, _ string, ev app.EventInput, vn app.VenueInput) (domain.Event, error) {
	s.gotEvent, s.gotVenue = ev, vn
	if s.err != nil {
		return domain.Event{}, s.err
	}
	return testEvent, nil
}

func (s *stubServices) DeleteEvent(context.Context, domain.User, string) error {
	return s.err
}

func (s *stubServices) BuyTicket(_ context.Context, eventID string, user domain.User) (app.BuyTicketResult, error) {
	if s.err != nil {
		return app.BuyTicketResult{}, s.err
	}
	return s.buyResult, nil
}

func (s *stubServices) ListTicketsForUser(_ context.Context, user domain.User) ([]domain.TicketWithEvent, error) {
	return []domain.TicketWithEvent{{
		Ticket: domain.Ticket{ID: "ticket-1", EventID: testEvent.ID, UserID: user.ID, Price: domain.FreeTicketPrice, PurchaseDate: testNow},
		Event:  testEvent,
	}}, s.err
}

func (s *stubServices) RemainingTickets(context.Context, string) (int, error) {
	return 1, s.err
}

func (s *stubServices) SubmitReview(_ context.Context, reviewer domain.User, in app.SubmitReviewInput) (domain.EventReview, error) {
	s.gotReview = in
	if s.err != nil {
		return domain.EventReview{}, s.err
	}
	return domain.EventReview{ID: "review-1", EventID: in.EventID, ReviewerID: reviewer.ID, Rating: in.Rating, Text: in.Text, CreatedAt: testNow}, nil
}

func newTestRouter(stub *stubServices) http.Handler {
	return NewRouter(Services{
		Auth:     stub,
		Accounts: stub,
		Queries:  stub,
		Events:   stub,
		Tickets:  stub,
		Reviews:  stub,
	}, RouterOptions{Logger: zerolog.Nop()})
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const validEventBody = `{
	"name": "Go Meetup",
	"description": "Monthly",
	"date": "2025-04-01",
	"start_time": "09:00",
	"end_time": "10:00",
	"max_participants": 2,
	"is_public": true,
	"venue": {"name": "Hall A", "address": "Main street 1", "capacity": 2}
}`

func TestRouter_ListEvents(t *testing.T) {
	t.Parallel()
	stub := &stubServices{}
	h := newTestRouter(stub)

	rec := do(t, h, http.MethodGet, "/events?q=meet", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "meet", stub.gotQuery)
	assert.Nil(t, stub.gotViewer)

	body := decode(t, rec)
	assert.Equal(t, "2025-03-10", body["today"])
	events := body["events"].([]any)
	require.Len(t, events, 1)
	first := events[0].(map[string]any)
	assert.Equal(t, "event-1", first["id"])
	assert.Equal(t, "09:00", first["start_time"])
	assert.Equal(t, "2025-04-01", first["date"])
	assert.Equal(t, false, first["has_ticket"])

	rec = do(t, h, http.MethodGet, "/events", "user-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.gotViewer)
	assert.Equal(t, attendee.ID, stub.gotViewer.ID)
}

func TestRouter_EventDetails(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(&stubServices{}), http.MethodGet, "/events/event-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Nil(t, body["average_rating"])
	assert.EqualValues(t, 2, body["remaining_tickets"])
	assert.Equal(t, []any{}, body["reviews"])

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrEventNotFound}), http.MethodGet, "/events/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "event_not_found", decode(t, rec)["code"])
}

func TestRouter_CreateEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "created", token: "manager-token", body: validEventBody, wantStatus: http.StatusCreated},
		{name: "anonymous", body: validEventBody, wantStatus: http.StatusUnauthorized, wantCode: "unauthenticated"},
		{name: "bad token", token: "nope", body: validEventBody, wantStatus: http.StatusUnauthorized, wantCode: "unauthenticated"},
		{name: "not a manager", token: "user-token", body: validEventBody, serviceErr: domain.ErrCannotManage, wantStatus: http.StatusForbidden, wantCode: "manager_required"},
		{name: "invalid range", token: "manager-token", body: validEventBody, serviceErr: domain.ErrInvalidRange, wantStatus: http.StatusBadRequest, wantCode: "invalid_time_range"},
		{name: "malformed json", token: "manager-token", body: `{"name":`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request_body"},
		{name: "unknown field", token: "manager-token", body: `{"nope":1}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request_body"},
		{
			name:       "missing name",
			token:      "manager-token",
			body:       strings.Replace(validEventBody, `"name": "Go Meetup",`, "", 1),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "bad time",
			token:      "manager-token",
			body:       strings.Replace(validEventBody, `"09:00"`, `"9am"`, 1),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "domain validation",
			token:      "manager-token",
			body:       validEventBody,
			serviceErr: domain.Invalid("address", "required for a physical venue"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{name: "store failure", token: "manager-token", body: validEventBody, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubServices{err: tt.serviceErr}
			rec := do(t, newTestRouter(stub), http.MethodPost, "/events", tt.token, tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode(t, rec)["code"])
			}
		})
	}

	t.Run("maps the request", func(t *testing.T) {
		stub := &stubServices{}
		rec := do(t, newTestRouter(stub), http.MethodPost, "/events", "manager-token", validEventBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Equal(t, "Go Meetup", stub.gotEvent.Name)
		assert.Equal(t, domain.NewTimeOfDay(9, 0), stub.gotEvent.StartTime)
		assert.Equal(t, domain.NewTimeOfDay(10, 0), stub.gotEvent.EndTime)
		assert.True(t, stub.gotEvent.IsPublic)
		assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), stub.gotEvent.Date)
		assert.Equal(t, "Hall A", stub.gotVenue.Name)
		require.NotNil(t, stub.gotVenue.Address)
		assert.Equal(t, "Main street 1", *stub.gotVenue.Address)
	})

	t.Run("omitted is_public means private", func(t *testing.T) {
		stub := &stubServices{}
		body := strings.Replace(validEventBody, `"is_public": true,`, "", 1)
		rec := do(t, newTestRouter(stub), http.MethodPost, "/events", "manager-token", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.False(t, stub.gotEvent.IsPublic)
	})
}

func TestRouter_UpdateAndDeleteEvent(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(&stubServices{}), http.MethodPut, "/events/event-1", "manager-token", validEventBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrNotOrganizer}), http.MethodPut, "/events/event-1", "manager-token", validEventBody)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_organizer", decode(t, rec)["code"])

	rec = do(t, newTestRouter(&stubServices{}), http.MethodDelete, "/events/event-1", "manager-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrNotOrganizer}), http.MethodDelete, "/events/event-1", "user-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_BuyTicket(t *testing.T) {
	t.Parallel()
	ticket := domain.Ticket{ID: "ticket-1", EventID: "event-1", UserID: attendee.ID, Price: domain.FreeTicketPrice, PurchaseDate: testNow}

	rec := do(t, newTestRouter(&stubServices{buyResult: app.BuyTicketResult{Ticket: ticket, Created: true}}), http.MethodPost, "/events/event-1/tickets", "user-token", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0.00", decode(t, rec)["price"])

	rec = do(t, newTestRouter(&stubServices{buyResult: app.BuyTicketResult{Ticket: ticket}}), http.MethodPost, "/events/event-1/tickets", "user-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrCapacityExceeded}), http.MethodPost, "/events/event-1/tickets", "user-token", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "capacity_exceeded", decode(t, rec)["code"])

	rec = do(t, newTestRouter(&stubServices{}), http.MethodPost, "/events/event-1/tickets", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, newTestRouter(&stubServices{}), http.MethodGet, "/events/event-1/tickets", "user-token", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_TicketsAndRemaining(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&stubServices{})

	rec := do(t, h, http.MethodGet, "/me/tickets", "user-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tickets := decode(t, rec)["tickets"].([]any)
	require.Len(t, tickets, 1)
	event := tickets[0].(map[string]any)["event"].(map[string]any)
	assert.Equal(t, "Hall A", event["venue"].(map[string]any)["name"])

	rec = do(t, h, http.MethodGet, "/events/event-1/remaining", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["remaining"])

	rec = do(t, h, http.MethodGet, "/dashboard", "manager-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 1)
}

func TestRouter_SubmitReview(t *testing.T) {
	t.Parallel()

	stub := &stubServices{}
	rec := do(t, newTestRouter(stub), http.MethodPost, "/events/event-1/reviews", "user-token", `{"rating":4,"text":"great"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, app.SubmitReviewInput{EventID: "event-1", Rating: 4, Text: "great"}, stub.gotReview)

	rec = do(t, newTestRouter(&stubServices{}), http.MethodPost, "/events/event-1/reviews", "user-token", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rating", decode(t, rec)["field"])

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrAlreadyReviewed}), http.MethodPost, "/events/event-1/reviews", "user-token", `{"rating":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrTicketRequired}), http.MethodPost, "/events/event-1/reviews", "user-token", `{"rating":4}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Accounts(t *testing.T) {
	t.Parallel()

	register := `{"username":"alice","email":"alice@example.com","password":"s3cretpass","repeat_password":"s3cretpass"}`
	rec := do(t, newTestRouter(&stubServices{}), http.MethodPost, "/auth/register", "", register)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])

	mismatch := strings.Replace(register, `"repeat_password":"s3cretpass"`, `"repeat_password":"different"`, 1)
	rec = do(t, newTestRouter(&stubServices{}), http.MethodPost, "/auth/register", "", mismatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "repeat_password", decode(t, rec)["field"])

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrUsernameTaken}), http.MethodPost, "/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username_taken", decode(t, rec)["code"])

	rec = do(t, newTestRouter(&stubServices{}), http.MethodPost, "/auth/login", "", `{"username":"alice","password":"s3cretpass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed", decode(t, rec)["token"])

	rec = do(t, newTestRouter(&stubServices{err: domain.ErrBadCredentials}), http.MethodPost, "/auth/login", "", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decode(t, rec)["code"])

	stub := &stubServices{}
	rec = do(t, newTestRouter(stub), http.MethodPost, "/auth/logout", "user-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-token", stub.loggedOut)

	rec = do(t, newTestRouter(&stubServices{}), http.MethodGet, "/me", "manager-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_manager"])
}

func TestRouter_StaleTokenDoesNotBlockLogin(t *testing.T) {
	t.Parallel()
	h := newTestRouter(&stubServices{})

	rec := do(t, h, http.MethodPost, "/auth/login", "expired-token", `{"username":"alice","password":"s3cretpass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	register := `{"username":"alice","email":"alice@example.com","password":"s3cretpass","repeat_password":"s3cretpass"}`
	rec = do(t, h, http.MethodPost, "/auth/register", "expired-token", register)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/me", "expired-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestRouter(&stubServices{}), http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["code"])
}
