package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cimillas/eventhub/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidationFailed   = "validation_failed"
	codeInvalidTimeRange   = "invalid_time_range"
	codeInvalidID          = "invalid_id"
	codeEventNotFound      = "event_not_found"
	codeUserNotFound       = "user_not_found"
	codeForbidden          = "forbidden"
	codeNotOrganizer       = "not_organizer"
	codeManagerRequired    = "manager_required"
	codeTicketRequired     = "ticket_required"
	codeCapacityExceeded   = "capacity_exceeded"
	codeConflict           = "conflict"
	codeUsernameTaken      = "username_taken"
	codeEmailTaken         = "email_taken"
	codeAlreadyReviewed    = "already_reviewed"
	codeEventNotStarted    = "event_not_started"
	codeUnauthenticated    = "unauthenticated"
	codeBadCredentials     = "invalid_credentials"
	codeRateLimited        = "rate_limited"
	codeUnavailable        = "unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// specificErrors maps individual domain errors to their own codes. Anything
// not listed falls back to its kind in writeServiceError.
var specificErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidID, http.StatusNotFound, codeInvalidID},
	{domain.ErrEventNotFound, http.StatusNotFound, codeEventNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound, codeUserNotFound},
	{domain.ErrNotOrganizer, http.StatusForbidden, codeNotOrganizer},
	{domain.ErrCannotManage, http.StatusForbidden, codeManagerRequired},
	{domain.ErrTicketRequired, http.StatusForbidden, codeTicketRequired},
	{domain.ErrUsernameTaken, http.StatusConflict, codeUsernameTaken},
	{domain.ErrEmailTaken, http.StatusConflict, codeEmailTaken},
	{domain.ErrAlreadyReviewed, http.StatusConflict, codeAlreadyReviewed},
	{domain.ErrEventNotStarted, http.StatusBadRequest, codeEventNotStarted},
	{domain.ErrBadCredentials, http.StatusUnauthorized, codeBadCredentials},
	{domain.ErrInvalidRange, http.StatusBadRequest, codeInvalidTimeRange},
	{domain.ErrCapacityExceeded, http.StatusConflict, codeCapacityExceeded},
}

// writeServiceError translates an error returned by a service. Unexpected
// errors are logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Code: codeValidationFailed, Field: verr.Field})
		return
	}

	for _, e := range specificErrors {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.code, e.err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrPermission):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
