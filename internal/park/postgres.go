package park

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/onnwee/skatespot/internal/tracing"
)

// Postgres error codes the repository maps to domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresRepository implements Repository against the park tables.
//
// The (id, place_id) UNIQUE constraint on user_saved_parks makes AddSaved a
// single statement: a duplicate save surfaces as a constraint violation
// instead of a check-then-insert, so concurrent saves of the same pair
// cannot both succeed.
type PostgresRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepository{db: db, logger: logger}
}

// parkColumns is the shared projection for catalog and saved-list queries.
const parkColumns = `p.place_id, p.name, p.formatted_address, p.phone, p.website, l.location_lat, l.location_long`

// ListCatalog returns every park that has a location row.
func (r *PostgresRepository) ListCatalog(ctx context.Context) (parks []Park, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "all_skateparks", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := fmt.Sprintf(`
		SELECT %s
		FROM all_skateparks p
		JOIN skatepark_location l ON p.place_id = l.place_id`, parkColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	return scanParks(rows)
}

// ListSaved returns the location-joined parks saved by userID.
func (r *PostgresRepository) ListSaved(ctx context.Context, userID int64) (parks []Park, err error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "user_saved_parks", tracing.DBOperationQuery)
	defer func() { endSpan(err) }()

	query := fmt.Sprintf(`
		SELECT %s
		FROM user_saved_parks s
		JOIN all_skateparks p ON s.place_id = p.place_id
		JOIN skatepark_location l ON p.place_id = l.place_id
		WHERE s.id = $1`, parkColumns)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved parks: %w", err)
	}
	defer rows.Close()

	return scanParks(rows)
}

// AddSaved bookmarks a park for the user.
func (r *PostgresRepository) AddSaved(ctx context.Context, userID int64, placeID string) error {
	const query = `INSERT INTO user_saved_parks (id, place_id) VALUES ($1, $2)`

	ctx, endSpan := tracing.StartDBSpan(ctx, "user_saved_parks", tracing.DBOperationInsert)

	_, err := r.db.ExecContext(ctx, query, userID, placeID)
	endSpan(err)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case uniqueViolation:
				return ErrAlreadySaved
			case foreignKeyViolation:
				return ErrParkNotFound
			}
		}
		r.logger.Error("failed to insert saved park",
			slog.Int64("user_id", userID),
			slog.String("place_id", placeID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to insert saved park: %w", err)
	}
	return nil
}

// RemoveSaved deletes the bookmark. Zero rows affected is still success.
func (r *PostgresRepository) RemoveSaved(ctx context.Context, userID int64, placeID string) error {
	const query = `DELETE FROM user_saved_parks WHERE id = $1 AND place_id = $2`

	ctx, endSpan := tracing.StartDBSpan(ctx, "user_saved_parks", tracing.DBOperationDelete)

	_, err := r.db.ExecContext(ctx, query, userID, placeID)
	endSpan(err)
	if err != nil {
		return fmt.Errorf("failed to delete saved park: %w", err)
	}
	return nil
}

// scanParks drains rows into the shared Park projection.
func scanParks(rows *sql.Rows) ([]Park, error) {
	parks := []Park{}
	for rows.Next() {
		var p Park
		if err := rows.Scan(&p.PlaceID, &p.Name, &p.FormattedAddress, &p.Phone, &p.Website, &p.LocationLat, &p.LocationLong); err != nil {
			return nil, fmt.Errorf("failed to scan park row: %w", err)
		}
		parks = append(parks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate park rows: %w", err)
	}
	return parks, nil
}
