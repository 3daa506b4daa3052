// Package park provides the skatepark catalog and per-user saved parks.
//
// A park only surfaces in the catalog or a saved list when it has a
// location row: the joins are inner joins, so location-less parks are
// excluded by construction rather than returned with empty coordinates.
package park

import (
	"context"
	"errors"
)

// Common errors for saved-park operations.
var (
	// ErrAlreadySaved is returned when the user has already saved the park.
	ErrAlreadySaved = errors.New("park already saved")

	// ErrParkNotFound is returned when the place ID does not exist in the catalog.
	ErrParkNotFound = errors.New("park not found")
)

// Park is a catalog entry joined with its location, shaped for the map widget.
type Park struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Phone            string  `json:"phone"`
	Website          string  `json:"website"`
	LocationLat      float64 `json:"location_lat"`
	LocationLong     float64 `json:"location_long"`
}

// Repository defines the read aggregations and saved-park mutations.
type Repository interface {
	// ListCatalog returns every park that has a location row.
	ListCatalog(ctx context.Context) ([]Park, error)

	// ListSaved returns the parks saved by userID, location-joined the same
	// way as the catalog. Never returns another user's saved parks.
	ListSaved(ctx context.Context, userID int64) ([]Park, error)

	// AddSaved bookmarks a park for the user.
	// Returns ErrAlreadySaved if the (user, park) pair already exists and
	// ErrParkNotFound if the place ID is not in the catalog.
	AddSaved(ctx context.Context, userID int64, placeID string) error

	// RemoveSaved deletes the bookmark. Idempotent: removing a park that
	// was never saved succeeds.
	RemoveSaved(ctx context.Context, userID int64, placeID string) error
}
