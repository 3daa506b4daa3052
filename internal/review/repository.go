package review

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Rows are returned in seeded order.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows []Row
}

// NewInMemoryRepository creates a new in-memory review repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// SeedRow appends a review row.
func (r *InMemoryRepository) SeedRow(row Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
}

// ListRows returns every seeded review row.
func (r *InMemoryRepository) ListRows(ctx context.Context) ([]Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]Row, len(r.rows))
	copy(rows, r.rows)
	return rows, nil
}

// PostgresRepository implements Repository against the review tables.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListRows returns every review joined with its park name. The join goes
// through all_skateparks only; parks without location rows are included.
func (r *PostgresRepository) ListRows(ctx context.Context) ([]Row, error) {
	const query = `
		SELECT p.name, p.place_id, v.review_author, v.review_rating, v.review_text
		FROM all_skateparks p
		JOIN skatepark_reviews v ON p.place_id = v.place_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Name, &row.PlaceID, &row.Author, &row.Rating, &row.Text); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review rows: %w", err)
	}
	return result, nil
}
