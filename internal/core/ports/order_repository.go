package ports

import (
	"context"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// List returns every order sorted by ticket.
	List(ctx context.Context) ([]*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByTitle(ctx context.Context, title string) (*domain.Order, error)
	// CountByUser reports how many orders reference the given user.
	CountByUser(ctx context.Context, userID string) (int64, error)
	// Create stores the order and fills in its ID. A taken title yields domain.ErrDuplicateTitle.
	Create(ctx context.Context, order *domain.Order) error
	// Replace overwrites user, title, text and completed. The ticket is never written.
	Replace(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id string) error
}

// SequenceAllocator hands out the next value of a named, store-backed counter.
type SequenceAllocator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// RequestClaimer records idempotency keys so a replayed create is rejected.
type RequestClaimer interface {
	// Claim returns false when the key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets a claim whose request failed, so the client may retry.
	Release(ctx context.Context, key string) error
}
