// Package api provides HTTP handlers for the SkateSpot API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/skatespot/internal/middleware"
	"github.com/onnwee/skatespot/internal/park"
)

// SaveParkRequest represents the request body for bookmarking a park.
type SaveParkRequest struct {
	PlaceID string `json:"place_id"`
}

// ParkHandlers holds dependencies for the park catalog and saved-list handlers.
// All of these routes sit behind the session guard; the user ID is read from
// the request context the guard populated.
type ParkHandlers struct {
	repo park.Repository
}

// NewParkHandlers creates a new ParkHandlers instance.
func NewParkHandlers(repo park.Repository) *ParkHandlers {
	return &ParkHandlers{repo: repo}
}

// ListParks handles GET /parks - the full location-joined catalog.
func (h *ParkHandlers) ListParks(w http.ResponseWriter, r *http.Request) {
	parks, err := h.repo.ListCatalog(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list parks", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, parks)
}

// ListSaved handles GET /parks/saved - the caller's saved parks only.
func (h *ParkHandlers) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.missingUser(w, r)
		return
	}

	parks, err := h.repo.ListSaved(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list saved parks", "error", err, "user_id", userID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, parks)
}

// SavePark handles POST /parks/saved.
//
// A duplicate save returns 409 already_saved. That is a notification, not a
// failure: the park is on the list either way, the client just tried twice.
func (h *ParkHandlers) SavePark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.missingUser(w, r)
		return
	}

	var req SaveParkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	req.PlaceID = strings.TrimSpace(req.PlaceID)
	if req.PlaceID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "place_id is required")
		return
	}

	if err := h.repo.AddSaved(r.Context(), userID, req.PlaceID); err != nil {
		switch {
		case errors.Is(err, park.ErrAlreadySaved):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeAlreadySaved)
			WriteError(w, ctx, http.StatusConflict, ErrCodeAlreadySaved, "Park already saved")
		case errors.Is(err, park.ErrParkNotFound):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Park not found")
		default:
			slog.ErrorContext(r.Context(), "failed to save park", "error", err, "user_id", userID, "place_id", req.PlaceID)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, SaveParkRequest{PlaceID: req.PlaceID})
}

// UnsavePark handles DELETE /parks/saved/{place_id}.
// Removing a park that is not on the list is still success.
func (h *ParkHandlers) UnsavePark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.missingUser(w, r)
		return
	}

	placeID := r.PathValue("place_id")
	if placeID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "place_id is required")
		return
	}

	if err := h.repo.RemoveSaved(r.Context(), userID, placeID); err != nil {
		slog.ErrorContext(r.Context(), "failed to unsave park", "error", err, "user_id", userID, "place_id", placeID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// missingUser covers handlers reached without the guard (a wiring bug).
func (h *ParkHandlers) missingUser(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeUnauthenticated)
	WriteError(w, ctx, http.StatusUnauthorized, ErrCodeUnauthenticated, "Authentication required")
}
