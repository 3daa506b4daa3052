package user

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex. Used in handler and service tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*User
}

// NewInMemoryRepository creates a new in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID: 1,
		byName: make(map[string]*User),
	}
}

// GetByUsername retrieves the unique user with the given username.
func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// Create inserts a new user and returns it with the generated ID.
func (r *InMemoryRepository) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[username]; exists {
		return nil, ErrDuplicateUsername
	}

	u := &User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
	}
	r.nextID++
	r.byName[username] = u

	copied := *u
	return &copied, nil
}
