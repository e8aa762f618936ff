package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder handles POST /customer/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "create order", err)
		return
	}

	WriteJSON(w, http.StatusCreated, order, h.log)
}

// ListOrders handles GET /customer/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		h.writeServiceError(w, "list orders", err)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// GetOrder handles GET /customer/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "orderId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get order", err)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// CancelOrder handles PUT /customer/orders/{orderId}/cancel?reason=
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "orderId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	order, err := h.orderService.CancelOrder(r.Context(), id, r.URL.Query().Get("reason"))
	if err != nil {
		h.writeServiceError(w, "cancel order", err)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// Reorder handles POST /customer/orders/{orderId}/reorder?addressId=
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "orderId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}
	addressID, ok := idQuery(r, "addressId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid address ID", h.log)
		return
	}

	order, err := h.orderService.Reorder(r.Context(), id, addressID)
	if err != nil {
		h.writeServiceError(w, "reorder", err)
		return
	}

	WriteJSON(w, http.StatusCreated, order, h.log)
}

// UpdateStatus handles PUT /restaurant/orders/{orderId}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "orderId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeServiceError(w, "update order status", err)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

func (h *OrderHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, service.ErrEmptyOrder):
		status, message = http.StatusBadRequest, "Order must contain at least one item"
	case errors.Is(err, service.ErrInvalidQuantity):
		status, message = http.StatusBadRequest, "Quantity must be positive"
	case errors.Is(err, service.ErrInvalidProduct):
		status, message = http.StatusBadRequest, "Invalid product"
	case errors.Is(err, service.ErrInvalidStatus):
		status, message = http.StatusBadRequest, "Invalid order status"
	case errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrRestaurantUnavailable),
		errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrOrderClosed):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrRestaurantNotFound):
		status, message = http.StatusNotFound, "Restaurant not found"
	case errors.Is(err, service.ErrInvalidAddress):
		status, message = http.StatusNotFound, "Delivery address not found"
	case errors.Is(err, service.ErrOrderNotFound):
		status, message = http.StatusNotFound, "Order not found"
	}

	if status == http.StatusInternalServerError {
		h.log.Error("failed to "+op, "error", err)
	} else {
		h.log.Info("rejected request to "+op, "status", status, "error", err)
	}
	WriteError(w, status, message, h.log)
}
