package ports

import (
	"context"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// CreateOrderInput carries the fields needed to open an order.
type CreateOrderInput struct {
	UserID string
	Title  string
	Text   string
	// IdempotencyKey is optional; a repeated key is rejected with domain.ErrDuplicateRequest.
	IdempotencyKey string
}

// UpdateOrderInput replaces an order's fields. Completed must be set explicitly.
type UpdateOrderInput struct {
	ID        string
	UserID    string
	Title     string
	Text      string
	Completed *bool
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	ListOrders(ctx context.Context) ([]*domain.OrderView, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, input UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) (*domain.Order, error)
}
