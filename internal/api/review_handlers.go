// Package api provides HTTP handlers for the SkateSpot API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/onnwee/skatespot/internal/middleware"
	"github.com/onnwee/skatespot/internal/review"
)

// ReviewHandlers holds dependencies for the review listing handler.
type ReviewHandlers struct {
	repo review.Repository
}

// NewReviewHandlers creates a new ReviewHandlers instance.
func NewReviewHandlers(repo review.Repository) *ReviewHandlers {
	return &ReviewHandlers{repo: repo}
}

// ListReviews handles GET /reviews.
//
// The response is an object keyed by park name, each value the list of
// reviews for that park, keys in the order parks first appear in the
// underlying rows. A park with reviews shows up here even when it has no
// location row and is therefore absent from /parks.
func (h *ReviewHandlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListRows(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list reviews", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, review.GroupByPark(rows))
}
