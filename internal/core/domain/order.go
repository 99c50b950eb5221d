package domain

import (
	"errors"
	"time"
)

// TicketSequence names the counter that numbers orders.
const TicketSequence = "ticketNums"

// DefaultTicketStart is the first ticket handed out on an empty counter.
const DefaultTicketStart int64 = 100

// UnknownUsername is attached to listed orders whose user no longer resolves.
const UnknownUsername = "unknown"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNoOrders         = errors.New("no orders found")
	ErrDuplicateTitle   = errors.New("duplicate order title")
	ErrDuplicateRequest = errors.New("request already processed")
)

// Order is a unit of work assigned to a user and numbered by a ticket.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Ticket    int64     `json:"ticket"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderView is an order joined with the username of its owner.
type OrderView struct {
	Order
	Username string `json:"username"`
}
