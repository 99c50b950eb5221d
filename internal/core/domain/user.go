package domain

import (
	"errors"
	"time"
)

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleAdmin    = "Admin"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNoUsers            = errors.New("no users found")
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrUserHasOrders      = errors.New("user has assigned orders")
	ErrInvalidUserData    = errors.New("invalid user data received")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

// User is an account that can own orders. PasswordHash never leaves the service boundary.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries any of the given role tags.
func (u *User) HasRole(roles ...string) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
