package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/orderdesk/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /orders safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List returns every order with its owner's username.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   orderResponse
// @Failure      400  {object}  messageResponse  "No orders found"
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	views, err := h.orders.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]orderResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toOrderResponse(&v.Order, v.Username))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create opens an order and assigns it the next ticket number.
//
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Replay protection key"
// @Param        body             body      createOrderRequest  true   "Order details"
// @Success      201              {object}  createOrderResponse
// @Failure      400              {object}  messageResponse
// @Failure      409              {object}  messageResponse
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), ports.CreateOrderInput{
		UserID:         req.User,
		Title:          req.Title,
		Text:           req.Text,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createOrderResponse{
		Message: "New order created",
		Order:   toOrderResponse(order, ""),
	})
}

// Update replaces an order's user, title, text and completed flag.
//
// @Summary      Update order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateOrderRequest  true  "Order fields"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /orders [patch]
func (h *OrderHandler) Update(c echo.Context) error {
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.orders.UpdateOrder(c.Request().Context(), ports.UpdateOrderInput{
		ID:        req.ID,
		UserID:    req.User,
		Title:     req.Title,
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("'%s' updated", order.Title)})
}

// Delete removes an order.
//
// @Summary      Delete order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteRequest  true  "Order ID"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /orders [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Order ID Required")
	}

	order, err := h.orders.DeleteOrder(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Order '%s' with ID %s deleted", order.Title, order.ID),
	})
}
