package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/domain"
)

type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, reviewer domain.User, in app.SubmitReviewInput) (domain.EventReview, error)
}

func HandleSubmitReview(svc ReviewSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		review, err := svc.SubmitReview(r.Context(), *userFromContext(r.Context()), app.SubmitReviewInput{
			EventID: mux.Vars(r)["id"],
			Rating:  req.Rating,
			Text:    req.Text,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newReviewResponse(review))
	}
}
