package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Services are the application services behind the HTTP API.
type Services struct {
	Auth     Authenticator
	Accounts AccountService
	Queries  EventQueries
	Events   EventManager
	Tickets  TicketService
	Reviews  ReviewSubmitter
}

// RouterOptions carries the ambient dependencies. Zero values disable the
// matching feature: no metrics endpoint, no rate limiting, no CORS origins.
type RouterOptions struct {
	Logger            zerolog.Logger
	Observer          RequestObserver
	RateLimitObserver RateLimitObserver
	MetricsPath       string
	MetricsHandler    http.Handler
	CORSOrigins       []string
	HealthChecks      map[string]Pinger
	TicketLimiter     RateLimiter
	LoginLimiter      RateLimiter
}

const (
	routeRegister = "register"
	routeLogin    = "login"
)

// NewRouter wires every endpoint.
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()
	r.Use(RequestLogger(opts.Logger), Instrument(opts.Observer), Authenticate(svc.Auth, routeRegister, routeLogin))

	limitTickets := RateLimit(opts.TicketLimiter, opts.RateLimitObserver)
	limitLogin := RateLimit(opts.LoginLimiter, opts.RateLimitObserver)

	r.Handle("/health", HandleHealth(opts.HealthChecks)).Methods(http.MethodGet)
	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.MetricsHandler).Methods(http.MethodGet)
	}

	r.Handle("/auth/register", HandleRegister(svc.Accounts)).Methods(http.MethodPost).Name(routeRegister)
	r.Handle("/auth/login", limitLogin(HandleLogin(svc.Accounts))).Methods(http.MethodPost).Name(routeLogin)
	r.Handle("/auth/logout", RequireUser(HandleLogout(svc.Accounts))).Methods(http.MethodPost)

	r.Handle("/me", RequireUser(HandleProfile(svc.Accounts))).Methods(http.MethodGet)
	r.Handle("/me/tickets", RequireUser(HandleMyTickets(svc.Tickets))).Methods(http.MethodGet)
	r.Handle("/dashboard", RequireUser(HandleDashboard(svc.Queries))).Methods(http.MethodGet)

	r.Handle("/events", HandleListEvents(svc.Queries)).Methods(http.MethodGet)
	r.Handle("/events", RequireUser(HandleCreateEvent(svc.Events))).Methods(http.MethodPost)
	r.Handle("/events/{id}", HandleEventDetails(svc.Queries)).Methods(http.MethodGet)
	r.Handle("/events/{id}", RequireUser(HandleUpdateEvent(svc.Events))).Methods(http.MethodPut)
	r.Handle("/events/{id}", RequireUser(HandleDeleteEvent(svc.Events))).Methods(http.MethodDelete)
	r.Handle("/events/{id}/tickets", RequireUser(limitTickets(HandleBuyTicket(svc.Tickets)))).Methods(http.MethodPost)
	r.Handle("/events/{id}/remaining", HandleRemainingTickets(svc.Tickets)).Methods(http.MethodGet)
	r.Handle("/events/{id}/reviews", RequireUser(HandleSubmitReview(svc.Reviews))).Methods(http.MethodPost)

	return CORS(opts.CORSOrigins, r)
}
