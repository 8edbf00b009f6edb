package http

import (
	"context"
	"net/http"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/domain"
)

// AccountService is the minimal interface needed by the auth and profile endpoints.
type AccountService interface {
	Register(ctx context.Context, in app.RegisterInput) (domain.User, error)
	Login(ctx context.Context, username, password string) (app.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (domain.User, error)
}

func HandleRegister(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		user, err := svc.Register(r.Context(), app.RegisterInput{
			Username:       req.Username,
			Email:          req.Email,
			Password:       req.Password,
			RepeatPassword: req.RepeatPassword,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newUserResponse(user))
	}
}

func HandleLogin(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		res, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{
			Token:     res.Token.Value,
			ExpiresAt: res.Token.ExpiresAt,
			User:      newUserResponse(res.User),
		})
	}
}

func HandleLogout(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleProfile(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Profile(r.Context(), userFromContext(r.Context()).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(user))
	}
}
