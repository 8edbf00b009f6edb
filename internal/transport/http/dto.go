package http

import (
	"time"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/domain"
)

const dateLayout = "2006-01-02"

type venueRequest struct {
	Name               string  `json:"name" validate:"required,max=200"`
	IsVirtual          bool    `json:"is_virtual"`
	Address            *string `json:"address" validate:"omitempty,max=255"`
	Capacity           int     `json:"capacity" validate:"required,gt=0"`
	VirtualMeetingLink *string `json:"virtual_meeting_link" validate:"omitempty,url,max=500"`
}

type eventRequest struct {
	Name            string       `json:"name" validate:"required,max=200"`
	Description     string       `json:"description"`
	Date            string       `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string       `json:"start_time" validate:"required"`
	EndTime         string       `json:"end_time" validate:"required"`
	IsPublic        bool         `json:"is_public"`
	Location        string       `json:"location" validate:"max=255"`
	MaxParticipants int          `json:"max_participants" validate:"required,gt=0"`
	Status          string       `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	Venue           venueRequest `json:"venue"`
}

// toInput converts the request after tag validation has passed.
func (r eventRequest) toInput() (app.EventInput, app.VenueInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return app.EventInput{}, app.VenueInput{}, domain.Invalid("date", "must match "+dateLayout)
	}
	start, err := domain.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return app.EventInput{}, app.VenueInput{}, domain.Invalid("start_time", "must match HH:MM")
	}
	end, err := domain.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return app.EventInput{}, app.VenueInput{}, domain.Invalid("end_time", "must match HH:MM")
	}

	ev := app.EventInput{
		Name:            r.Name,
		Description:     r.Description,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		IsPublic:        r.IsPublic,
		Location:        r.Location,
		MaxParticipants: r.MaxParticipants,
		Status:          domain.EventStatus(r.Status),
	}
	vn := app.VenueInput{
		Name:               r.Venue.Name,
		IsVirtual:          r.Venue.IsVirtual,
		Address:            r.Venue.Address,
		Capacity:           r.Venue.Capacity,
		VirtualMeetingLink: r.Venue.VirtualMeetingLink,
	}
	return ev, vn, nil
}

type venueResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	IsVirtual          bool    `json:"is_virtual"`
	Address            *string `json:"address"`
	Capacity           int     `json:"capacity"`
	VirtualMeetingLink *string `json:"virtual_meeting_link"`
}

type eventResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Date            string        `json:"date"`
	StartTime       string        `json:"start_time"`
	EndTime         string        `json:"end_time"`
	IsPublic        bool          `json:"is_public"`
	Location        string        `json:"location"`
	MaxParticipants int           `json:"max_participants"`
	OrganizerID     string        `json:"organizer_id"`
	PubDate         time.Time     `json:"pub_date"`
	Status          string        `json:"status"`
	Venue           venueResponse `json:"venue"`
}

func newEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:              e.ID,
		Name:            e.Name,
		Description:     e.Description,
		Date:            e.Date.Format(dateLayout),
		StartTime:       e.StartTime.String(),
		EndTime:         e.EndTime.String(),
		IsPublic:        e.IsPublic,
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		OrganizerID:     e.OrganizerID,
		PubDate:         e.PubDate,
		Status:          string(e.Status),
		Venue: venueResponse{
			ID:                 e.Venue.ID,
			Name:               e.Venue.Name,
			IsVirtual:          e.Venue.IsVirtual,
			Address:            e.Venue.Address,
			Capacity:           e.Venue.Capacity,
			VirtualMeetingLink: e.Venue.VirtualMeetingLink,
		},
	}
}

func newEventResponses(events []domain.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	return out
}

type listingItem struct {
	eventResponse
	HasTicket bool `json:"has_ticket"`
}

type listingResponse struct {
	Events []listingItem `json:"events"`
	Today  string        `json:"today"`
}

type ticketResponse struct {
	ID           string         `json:"id"`
	EventID      string         `json:"event_id"`
	UserID       string         `json:"user_id"`
	Price        string         `json:"price"`
	PurchaseDate time.Time      `json:"purchase_date"`
	Event        *eventResponse `json:"event,omitempty"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		EventID:      t.EventID,
		UserID:       t.UserID,
		Price:        t.Price.StringFixed(2),
		PurchaseDate: t.PurchaseDate,
	}
}

type reviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text   string `json:"text" validate:"max=2000"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func newReviewResponse(r domain.EventReview) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		EventID:    r.EventID,
		ReviewerID: r.ReviewerID,
		Rating:     r.Rating,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
	}
}

type detailsResponse struct {
	Event            eventResponse    `json:"event"`
	RemainingTickets int              `json:"remaining_tickets"`
	AverageRating    *float64         `json:"average_rating"`
	Reviews          []reviewResponse `json:"reviews"`
	IsPast           bool             `json:"is_past"`
	ViewerTicket     *ticketResponse  `json:"viewer_ticket"`
	ViewerReview     *reviewResponse  `json:"viewer_review"`
}

func newDetailsResponse(d app.EventDetails) detailsResponse {
	resp := detailsResponse{
		Event:            newEventResponse(d.Event),
		RemainingTickets: d.RemainingTickets,
		AverageRating:    d.AverageRating,
		Reviews:          make([]reviewResponse, 0, len(d.Reviews)),
		IsPast:           d.IsPast,
	}
	for _, r := range d.Reviews {
		resp.Reviews = append(resp.Reviews, newReviewResponse(r))
	}
	if d.ViewerTicket != nil {
		t := newTicketResponse(*d.ViewerTicket)
		resp.ViewerTicket = &t
	}
	if d.ViewerReview != nil {
		r := newReviewResponse(*d.ViewerReview)
		resp.ViewerReview = &r
	}
	return resp
}

type registerRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=150"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	RepeatPassword string `json:"repeat_password" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsManager bool      `json:"is_manager"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsManager: u.CanManageEvents(),
		CreatedAt: u.CreatedAt,
	}
}
