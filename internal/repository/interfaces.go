package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trackmint/peerledger/internal/domain"
)

// EntryRepository defines the interface for ledger entry data operations.
// The same interface backs both record families; which family a given
// instance serves is fixed at construction time. Lookups that miss return
// (nil, nil) rather than an error.
type EntryRepository interface {
	// Create inserts a new ledger entry
	Create(ctx context.Context, entry *domain.Entry) error

	// GetByID retrieves an entry by id, scoped to its owner
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Entry, error)

	// FindActive retrieves a non-Cleared entry matching the natural key
	FindActive(ctx context.Context, key domain.NaturalKey) (*domain.Entry, error)

	// FindCounterpart retrieves the entry matching the mirror-lookup key
	FindCounterpart(ctx context.Context, lenderName, borrowerName string, initialAmount decimal.Decimal) (*domain.Entry, error)

	// ListByOwner retrieves all entries owned by a user
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Entry, error)

	// ListActive retrieves all non-Cleared entries across owners
	ListActive(ctx context.Context) ([]*domain.Entry, error)

	// TotalsByOwner sums initial and remaining amounts over an owner's entries
	TotalsByOwner(ctx context.Context, ownerID uuid.UUID) (initial, remaining decimal.Decimal, err error)

	// Update persists all mutable fields of an entry
	Update(ctx context.Context, entry *domain.Entry) error

	// Delete removes an entry by id
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository reads registered accounts. The auth service owns writes.
type UserRepository interface {
	// GetByEmail retrieves a user by email, (nil, nil) when unregistered
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
