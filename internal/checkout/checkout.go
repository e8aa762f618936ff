// Package checkout turns the cart into an order. The cart is cleared only
// after the order has been accepted; on any failure it is left as is so the
// customer can retry.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JustYuvaraj/fooddelivery/internal/cart"
	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoDeliveryAddress = errors.New("delivery address is required")
)

// OrderSubmitter creates an order on the backend
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

// Cart is the part of cart.Store that checkout needs
type Cart interface {
	Snapshot() cart.State
	Clear()
}

// Service handles checkout of a single cart
type Service struct {
	cart      Cart
	submitter OrderSubmitter
	rates     pricing.Rates
	log       *slog.Logger
}

// NewService creates a new checkout service
func NewService(c Cart, submitter OrderSubmitter, rates pricing.Rates, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cart:      c,
		submitter: submitter,
		rates:     rates,
		log:       log,
	}
}

// Summary returns the order summary for the current cart contents
func (s *Service) Summary() pricing.Quote {
	return s.rates.Quote(s.cart.Snapshot().Total())
}

// PlaceOrder submits the cart as an order for delivery to addressID.
func (s *Service) PlaceOrder(ctx context.Context, addressID int64, specialInstructions string) (*models.Order, error) {
	st := s.cart.Snapshot()
	if st.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if addressID <= 0 {
		return nil, ErrNoDeliveryAddress
	}

	req := BuildRequest(st, addressID, specialInstructions)

	order, err := s.submitter.CreateOrder(ctx, req)
	if err != nil {
		s.log.Warn("order submission failed, cart kept",
			"restaurant_id", req.RestaurantID,
			"items", len(req.Items),
			"error", err,
		)
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.cart.Clear()
	s.log.Info("order placed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"total", pricing.Round2(order.TotalAmount),
	)
	return order, nil
}

// BuildRequest maps a non-empty cart state to an order creation request
func BuildRequest(st cart.State, addressID int64, specialInstructions string) models.CreateOrderRequest {
	req := models.CreateOrderRequest{
		DeliveryAddressID:   addressID,
		Items:               make([]models.OrderItemRequest, 0, len(st.Items)),
		SpecialInstructions: specialInstructions,
	}
	if st.RestaurantID != nil {
		req.RestaurantID = *st.RestaurantID
	}
	for _, item := range st.Items {
		req.Items = append(req.Items, models.OrderItemRequest{
			ProductID:       item.Product.ID,
			Quantity:        item.Quantity,
			SpecialRequests: item.SpecialRequests,
		})
	}
	return req
}
