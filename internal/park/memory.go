package park

import (
	"context"
	"sync"
)

// location pairs the coordinates kept separately from park info, mirroring
// the skatepark_location table.
type location struct {
	lat float64
	lng float64
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex. Park info and locations are stored separately so
// tests can seed a park without a location row and observe the inner-join
// exclusion, just like the real tables.
type InMemoryRepository struct {
	mu        sync.RWMutex
	order     []string            // place IDs in insertion order
	info      map[string]Park     // coordinates in these entries are ignored
	locations map[string]location // present only for parks with a location row
	saved     map[int64][]string  // user ID -> place IDs in save order
}

// NewInMemoryRepository creates a new in-memory park repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		info:      make(map[string]Park),
		locations: make(map[string]location),
		saved:     make(map[int64][]string),
	}
}

// SeedPark adds a park with a location row.
func (r *InMemoryRepository) SeedPark(p Park) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.info[p.PlaceID]; !exists {
		r.order = append(r.order, p.PlaceID)
	}
	r.info[p.PlaceID] = p
	r.locations[p.PlaceID] = location{lat: p.LocationLat, lng: p.LocationLong}
}

// SeedParkWithoutLocation adds a park with no location row. Such a park is
// invisible to ListCatalog and ListSaved but can still be bookmarked.
func (r *InMemoryRepository) SeedParkWithoutLocation(p Park) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.info[p.PlaceID]; !exists {
		r.order = append(r.order, p.PlaceID)
	}
	r.info[p.PlaceID] = p
	delete(r.locations, p.PlaceID)
}

// join returns the location-joined record for placeID, or false when the
// park has no location row.
func (r *InMemoryRepository) join(placeID string) (Park, bool) {
	loc, ok := r.locations[placeID]
	if !ok {
		return Park{}, false
	}
	p := r.info[placeID]
	p.LocationLat = loc.lat
	p.LocationLong = loc.lng
	return p, true
}

// ListCatalog returns every park that has a location row.
func (r *InMemoryRepository) ListCatalog(ctx context.Context) ([]Park, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parks := make([]Park, 0, len(r.order))
	for _, placeID := range r.order {
		if p, ok := r.join(placeID); ok {
			parks = append(parks, p)
		}
	}
	return parks, nil
}

// ListSaved returns the location-joined parks saved by userID.
func (r *InMemoryRepository) ListSaved(ctx context.Context, userID int64) ([]Park, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parks := make([]Park, 0, len(r.saved[userID]))
	for _, placeID := range r.saved[userID] {
		if p, ok := r.join(placeID); ok {
			parks = append(parks, p)
		}
	}
	return parks, nil
}

// AddSaved bookmarks a park for the user.
func (r *InMemoryRepository) AddSaved(ctx context.Context, userID int64, placeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.info[placeID]; !exists {
		return ErrParkNotFound
	}
	for _, saved := range r.saved[userID] {
		if saved == placeID {
			return ErrAlreadySaved
		}
	}
	r.saved[userID] = append(r.saved[userID], placeID)
	return nil
}

// RemoveSaved deletes the bookmark. Idempotent.
func (r *InMemoryRepository) RemoveSaved(ctx context.Context, userID int64, placeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.saved[userID]
	for i, candidate := range saved {
		if candidate == placeID {
			r.saved[userID] = append(saved[:i], saved[i+1:]...)
			return nil
		}
	}
	return nil
}
