package ports

import (
	"context"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// List returns every user without its password hash.
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByIDs resolves many users in one round trip. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	// Create stores the user and fills in its ID. A taken username yields domain.ErrDuplicateUsername.
	Create(ctx context.Context, user *domain.User) error
	// Replace overwrites every mutable field of an existing user.
	Replace(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
