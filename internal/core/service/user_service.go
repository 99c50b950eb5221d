package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/orderdesk/internal/api/metrics"
	"github.com/99minutos/orderdesk/internal/core/domain"
	"github.com/99minutos/orderdesk/internal/core/ports"
)

// UserService manages user records and guards their uniqueness and references.
type UserService struct {
	users  ports.UserRepository
	orders ports.OrderRepository
	cost   int
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, orders ports.OrderRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, orders: orders, cost: bcrypt.DefaultCost, logger: logger}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrNoUsers
	}
	return users, nil
}

// CreateUser registers a user after checking the username is free. The
// unique index on username still rejects a concurrent insert that slips past
// the pre-check.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" || !validRoles(input.Roles) {
		return nil, domain.ErrInvalidInput
	}

	if err := s.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        dedupRoles(input.Roles),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			metrics.ConflictsTotal.WithLabelValues("user", "duplicate_username").Inc()
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUserData, err)
	}

	metrics.UsersCreatedTotal.Inc()
	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

// UpdateUser replaces username, roles and active. The password is re-hashed
// only when a new one is supplied.
func (s *UserService) UpdateUser(ctx context.Context, input ports.UpdateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if input.ID == "" || username == "" || !validRoles(input.Roles) || input.Active == nil {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
		return nil, err
	}

	user.Username = username
	user.Roles = dedupRoles(input.Roles)
	user.Active = *input.Active
	user.UpdatedAt = time.Now().UTC()

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Replace(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			metrics.ConflictsTotal.WithLabelValues("user", "duplicate_username").Inc()
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user updated")
	return user, nil
}

// DeleteUser removes a user that no order references.
func (s *UserService) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	n, err := s.orders.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count orders for user: %w", err)
	}
	if n > 0 {
		metrics.ConflictsTotal.WithLabelValues("user", "has_orders").Inc()
		return nil, domain.ErrUserHasOrders
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	metrics.UsersDeletedTotal.Inc()
	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user deleted")
	return user, nil
}

// EnsureAdmin creates an active Admin user when username is not taken yet.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	_, err = s.CreateUser(ctx, ports.CreateUserInput{
		Username: username,
		Password: password,
		Roles:    []string{domain.RoleAdmin},
	})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ensureUsernameFree fails when username belongs to a user other than selfID.
func (s *UserService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check username: %w", err)
	case existing.ID != selfID:
		metrics.ConflictsTotal.WithLabelValues("user", "duplicate_username").Inc()
		return domain.ErrDuplicateUsername
	}
	return nil
}

func validRoles(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if strings.TrimSpace(r) == "" {
			return false
		}
	}
	return true
}

// dedupRoles keeps the first occurrence of each role, preserving order.
func dedupRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
