package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/orderdesk/internal/api/metrics"
	"github.com/99minutos/orderdesk/internal/core/domain"
	"github.com/99minutos/orderdesk/internal/core/ports"
)

// OrderService manages orders: title uniqueness, ticket numbering and the
// username join on listing. Users are only read, never written.
type OrderService struct {
	orders  ports.OrderRepository
	users   ports.UserRepository
	tickets ports.SequenceAllocator
	claims  ports.RequestClaimer
	logger  zerolog.Logger
}

// NewOrderService wires the service. claims may be nil, in which case
// idempotency keys are ignored.
func NewOrderService(
	orders ports.OrderRepository,
	users ports.UserRepository,
	tickets ports.SequenceAllocator,
	claims ports.RequestClaimer,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:  orders,
		users:   users,
		tickets: tickets,
		claims:  claims,
		logger:  logger,
	}
}

// ListOrders returns all orders with the owner's username attached. An order
// whose user no longer resolves is still listed, under domain.UnknownUsername.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.OrderView, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, domain.ErrNoOrders
	}

	ids := make([]string, 0, len(orders))
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}

	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve order owners: %w", err)
	}

	views := make([]*domain.OrderView, 0, len(orders))
	for _, o := range orders {
		username := domain.UnknownUsername
		if u, ok := owners[o.UserID]; ok {
			username = u.Username
		} else {
			s.logger.Warn().Str("order_id", o.ID).Str("user_id", o.UserID).Msg("order references missing user")
		}
		views = append(views, &domain.OrderView{Order: *o, Username: username})
	}
	return views, nil
}

// CreateOrder opens an order and numbers it with the next ticket. Tickets
// consumed by a failed insert are not reused. The idempotency key is claimed
// before any other check, so replaying an accepted request yields
// ErrDuplicateRequest; the key is released again when creation fails.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	title := strings.TrimSpace(input.Title)
	if input.UserID == "" || title == "" || strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrInvalidInput
	}

	claimed := false
	if input.IdempotencyKey != "" && s.claims != nil {
		fresh, err := s.claims.Claim(ctx, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("idempotency claim failed, processing anyway")
		} else if !fresh {
			metrics.ConflictsTotal.WithLabelValues("order", "replayed_request").Inc()
			return nil, domain.ErrDuplicateRequest
		}
		claimed = err == nil
	}

	order, err := s.openOrder(ctx, input, title)
	if err != nil {
		if claimed {
			if rerr := s.claims.Release(ctx, input.IdempotencyKey); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", input.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	s.logger.Info().Str("order_id", order.ID).Int64("ticket", order.Ticket).Str("user_id", order.UserID).Msg("order created")
	return order, nil
}

func (s *OrderService) openOrder(ctx context.Context, input ports.CreateOrderInput, title string) (*domain.Order, error) {
	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	if err := s.ensureTitleFree(ctx, title, ""); err != nil {
		return nil, err
	}
	return s.insertOrder(ctx, input, title)
}

// insertOrder numbers the order and stores it.
func (s *OrderService) insertOrder(ctx context.Context, input ports.CreateOrderInput, title string) (*domain.Order, error) {
	ticket, err := s.tickets.Next(ctx, domain.TicketSequence)
	if err != nil {
		return nil, fmt.Errorf("allocate ticket: %w", err)
	}
	metrics.LastTicketIssued.Set(float64(ticket))

	now := time.Now().UTC()
	order := &domain.Order{
		UserID:    input.UserID,
		Title:     title,
		Text:      input.Text,
		Completed: false,
		Ticket:    ticket,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateTitle) {
			metrics.ConflictsTotal.WithLabelValues("order", "duplicate_title").Inc()
			return nil, err
		}
		s.logger.Error().Err(err).Int64("ticket", ticket).Msg("failed to create order")
		return nil, err
	}
	return order, nil
}

// UpdateOrder replaces user, title, text and completed. The ticket is kept.
func (s *OrderService) UpdateOrder(ctx context.Context, input ports.UpdateOrderInput) (*domain.Order, error) {
	title := strings.TrimSpace(input.Title)
	if input.ID == "" || input.UserID == "" || title == "" || strings.TrimSpace(input.Text) == "" || input.Completed == nil {
		return nil, domain.ErrInvalidInput
	}

	order, err := s.orders.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if order.UserID != input.UserID {
		if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.ensureTitleFree(ctx, title, order.ID); err != nil {
		return nil, err
	}

	order.UserID = input.UserID
	order.Title = title
	order.Text = input.Text
	order.Completed = *input.Completed
	order.UpdatedAt = time.Now().UTC()

	if err := s.orders.Replace(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateTitle) {
			metrics.ConflictsTotal.WithLabelValues("order", "duplicate_title").Inc()
		}
		return nil, err
	}

	s.logger.Info().Str("order_id", order.ID).Int64("ticket", order.Ticket).Msg("order updated")
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Delete(ctx, order.ID); err != nil {
		return nil, err
	}

	metrics.OrdersDeletedTotal.Inc()
	s.logger.Info().Str("order_id", order.ID).Int64("ticket", order.Ticket).Msg("order deleted")
	return order, nil
}

// ensureTitleFree fails when title belongs to an order other than selfID.
func (s *OrderService) ensureTitleFree(ctx context.Context, title, selfID string) error {
	existing, err := s.orders.FindByTitle(ctx, title)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check title: %w", err)
	case existing.ID != selfID:
		metrics.ConflictsTotal.WithLabelValues("order", "duplicate_title").Inc()
		return domain.ErrDuplicateTitle
	}
	return nil
}
