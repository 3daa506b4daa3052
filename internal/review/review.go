// Package review provides park review rows and the grouping transform that
// reshapes them into per-park ordered lists for the reviews page.
package review

import "context"

// Row is one review joined with its park's name, as produced by the
// all_skateparks × skatepark_reviews join. Reviews are queried independently
// of location, so a park with reviews but no location row still appears here
// even though it never appears in the catalog.
type Row struct {
	Name    string  `json:"name"`
	PlaceID string  `json:"place_id"`
	Author  string  `json:"review_author"`
	Rating  float64 `json:"review_rating"`
	Text    string  `json:"review_text"`
}

// Entry is a single review under a park key: the Row minus the park name,
// which becomes the key in the grouped structure.
type Entry struct {
	PlaceID string  `json:"place_id"`
	Author  string  `json:"review_author"`
	Rating  float64 `json:"review_rating"`
	Text    string  `json:"review_text"`
}

// Repository defines the review read operation.
type Repository interface {
	// ListRows returns every review joined with its park name.
	ListRows(ctx context.Context) ([]Row, error)
}
