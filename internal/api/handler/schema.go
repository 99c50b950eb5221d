package handler

import (
	"time"

	"github.com/99minutos/orderdesk/internal/core/domain"
)

// messageResponse is the envelope for confirmations and errors.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Users ---

type createUserRequest struct {
	Username string   `json:"username" validate:"required,max=64"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles"    validate:"required,min=1,dive,required"`
}

type updateUserRequest struct {
	ID       string   `json:"id"       validate:"required"`
	Username string   `json:"username" validate:"required,max=64"`
	Roles    []string `json:"roles"    validate:"required,min=1,dive,required"`
	Active   *bool    `json:"active"   validate:"required"`
	Password string   `json:"password,omitempty"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

// userResponse never carries a password field.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type createUserResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// --- Orders ---

type createOrderRequest struct {
	User  string `json:"user"  validate:"required"`
	Title string `json:"title" validate:"required,max=200"`
	Text  string `json:"text"  validate:"required"`
}

type updateOrderRequest struct {
	ID        string `json:"id"        validate:"required"`
	User      string `json:"user"      validate:"required"`
	Title     string `json:"title"     validate:"required,max=200"`
	Text      string `json:"text"      validate:"required"`
	Completed *bool  `json:"completed" validate:"required"`
}

type orderResponse struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Username  string    `json:"username,omitempty"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Ticket    int64     `json:"ticket"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type createOrderResponse struct {
	Message string        `json:"message"`
	Order   orderResponse `json:"order"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// --- Mappers ---

func toUserResponse(u *domain.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Roles:     roles,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toOrderResponse(o *domain.Order, username string) orderResponse {
	return orderResponse{
		ID:        o.ID,
		User:      o.UserID,
		Username:  username,
		Title:     o.Title,
		Text:      o.Text,
		Completed: o.Completed,
		Ticket:    o.Ticket,
		CreatedAt: o.CreatedAt.UTC(),
		UpdatedAt: o.UpdatedAt.UTC(),
	}
}
