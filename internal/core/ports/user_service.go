package ports

import (
	"context"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// CreateUserInput carries the fields needed to register a user.
type CreateUserInput struct {
	Username string
	Password string
	Roles    []string
}

// UpdateUserInput replaces a user's fields. Password is optional; Active is required.
type UpdateUserInput struct {
	ID       string
	Username string
	Roles    []string
	Active   *bool
	Password string
}

// UserService defines use-case operations for users.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.User, error)
}
