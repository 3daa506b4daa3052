package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRepository implements Repository against the users table.
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

// GetByUsername retrieves the unique user with the given username.
// The lookup is case-sensitive, matching the UNIQUE constraint on the column.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT id, username, hash FROM users WHERE username = $1`

	var u User
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	return &u, nil
}

// Create inserts a new user and returns it with the generated ID.
// The users.username UNIQUE constraint backstops the pre-insert duplicate
// check performed by the credential service.
func (r *PostgresRepository) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	const query = `INSERT INTO users (username, hash) VALUES ($1, $2) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateUsername
		}
		r.logger.Error("failed to insert user",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}
