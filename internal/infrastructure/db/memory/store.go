// Package memory keeps users, orders and counters in process memory. It
// enforces the same uniqueness rules as the Mongo indexes and is meant for
// local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// Store holds every collection behind one lock so cross-collection checks
// see a consistent view.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	orders   map[string]*domain.Order
	counters map[string]int64
	start    int64
}

func NewStore(ticketStart int64) *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		orders:   make(map[string]*domain.Order),
		counters: make(map[string]int64),
		start:    ticketStart,
	}
}

func (s *Store) Users() *UserRepository   { return &UserRepository{s: s} }
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }
func (s *Store) Counters() *Counter       { return &Counter{s: s} }

type UserRepository struct{ s *Store }

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := cloneUser(u)
		c.PasswordHash = ""
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			c := cloneUser(u)
			c.PasswordHash = ""
			out[id] = c
		}
	}
	return out, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	user.ID = uuid.NewString()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Replace(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

type OrderRepository struct{ s *Store }

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

func (r *OrderRepository) List(_ context.Context) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticket < out[j].Ticket })
	return out, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) FindByTitle(_ context.Context, title string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		if o.Title == title {
			return cloneOrder(o), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *OrderRepository) CountByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, o := range r.s.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.Title == order.Title {
			return domain.ErrDuplicateTitle
		}
	}
	order.ID = uuid.NewString()
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepository) Replace(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for id, o := range r.s.orders {
		if id != order.ID && o.Title == order.Title {
			return domain.ErrDuplicateTitle
		}
	}
	c := cloneOrder(order)
	c.Ticket = stored.Ticket
	c.CreatedAt = stored.CreatedAt
	r.s.orders[order.ID] = c
	return nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.s.orders, id)
	return nil
}

// Counter is a named sequence: the first value is the store's start, then +1.
type Counter struct{ s *Store }

func (c *Counter) Next(_ context.Context, name string) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	last, ok := c.s.counters[name]
	if !ok {
		c.s.counters[name] = c.s.start
		return c.s.start, nil
	}
	c.s.counters[name] = last + 1
	return last + 1, nil
}
