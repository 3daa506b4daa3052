// Package auth provides credential verification and session token management.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/onnwee/skatespot/internal/user"
)

// ErrDuplicateUsername is returned by Register when the username is taken.
// Re-exported so handlers don't need to import the user package for it.
var ErrDuplicateUsername = user.ErrDuplicateUsername

// CredentialService verifies and registers username/password credentials
// against the user repository. Password hashes are bcrypt; the comparison
// is constant-time by construction.
type CredentialService struct {
	users  user.Repository
	cost   int
	logger *slog.Logger
}

// NewCredentialService creates a CredentialService with the default bcrypt cost.
func NewCredentialService(users user.Repository, logger *slog.Logger) *CredentialService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialService{
		users:  users,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
}

// Verify checks a candidate password against the stored hash for username.
// A missing user, a wrong password, and a malformed stored hash all return
// (nil, false, nil): the caller cannot distinguish which usernames exist.
// The error return is reserved for store failures.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (*user.User, bool, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		// Burn a comparison anyway so response timing does not depend on
		// whether the username exists.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		// Covers both mismatches and malformed hashes.
		return nil, false, nil
	}
	return u, true, nil
}

// Register hashes the password and creates a new user.
// Returns ErrDuplicateUsername if the username is already taken; the
// pre-insert lookup gives the friendly error and the storage-level UNIQUE
// constraint closes the race between concurrent registrations.
func (s *CredentialService) Register(ctx context.Context, username, password string) (*user.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", slog.Int64("user_id", u.ID))
	return u, nil
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to equalize
// timing for lookups of nonexistent usernames.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("skatespot-timing-pad"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
