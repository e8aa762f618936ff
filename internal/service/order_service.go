package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
	"github.com/JustYuvaraj/fooddelivery/internal/repository"
)

var (
	ErrInvalidProduct        = errors.New("invalid product")
	ErrProductUnavailable    = errors.New("product is not available")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrEmptyOrder            = errors.New("order must contain at least one item")
	ErrRestaurantNotFound    = errors.New("restaurant not found")
	ErrRestaurantUnavailable = errors.New("restaurant is not accepting orders")
	ErrInvalidAddress        = errors.New("delivery address not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrOrderClosed           = errors.New("order is already delivered or cancelled")
	ErrNotCancellable        = errors.New("order can no longer be cancelled")
)

// DefaultCustomerID is the customer every request acts for. The mock backend
// has no login.
const DefaultCustomerID int64 = 1

// EventPublisher announces order changes. Publishing is best effort.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *models.Order) error
	PublishStatusChanged(ctx context.Context, o *models.Order, oldStatus models.OrderStatus) error
}

// OrderPricing controls how order totals are computed
type OrderPricing struct {
	Rates pricing.Rates
	// DistanceFees replaces the flat delivery fee with the distance tier
	// between restaurant and delivery address.
	DistanceFees bool
}

// OrderService handles order business logic
type OrderService struct {
	restaurants repository.RestaurantRepository
	products    repository.ProductRepository
	addresses   repository.AddressRepository
	orders      repository.OrderRepository
	publisher   EventPublisher
	pricing     OrderPricing
	log         *slog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	restaurants repository.RestaurantRepository,
	products repository.ProductRepository,
	addresses repository.AddressRepository,
	orders repository.OrderRepository,
	publisher EventPublisher,
	orderPricing OrderPricing,
	log *slog.Logger,
) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{
		restaurants: restaurants,
		products:    products,
		addresses:   addresses,
		orders:      orders,
		publisher:   publisher,
		pricing:     orderPricing,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates the request, prices it and stores a new PLACED order
func (s *OrderService) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	restaurant, err := s.restaurants.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if !restaurant.IsAcceptingOrders {
		return nil, ErrRestaurantUnavailable
	}

	address, err := s.addresses.GetByID(ctx, req.DeliveryAddressID)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, ErrInvalidAddress
		}
		return nil, fmt.Errorf("get address: %w", err)
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrInvalidProduct, item.ProductID)
			}
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product.RestaurantID != restaurant.ID {
			return nil, fmt.Errorf("%w: %d is not sold by restaurant %d", ErrInvalidProduct, product.ID, restaurant.ID)
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
		}

		items = append(items, models.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        item.Quantity,
			UnitPrice:       product.Price,
			Subtotal:        pricing.LineTotal(product.Price, item.Quantity),
			SpecialRequests: item.SpecialRequests,
		})
	}

	quote := s.quote(restaurant, address, items)
	now := s.now()

	order := &models.Order{
		OrderNumber:         generateOrderNumber(now),
		CustomerID:          DefaultCustomerID,
		RestaurantID:        restaurant.ID,
		RestaurantName:      restaurant.Name,
		DeliveryAddressID:   address.ID,
		Status:              models.StatusPlaced,
		Items:               items,
		ItemsTotal:          quote.ItemsTotal,
		DeliveryFee:         quote.DeliveryFee,
		TaxAmount:           quote.Tax,
		TotalAmount:         quote.Total,
		DeliveryLatitude:    address.Latitude,
		DeliveryLongitude:   address.Longitude,
		PlacedAt:            now,
		SpecialInstructions: req.SpecialInstructions,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.log.Info("order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"restaurant_id", order.RestaurantID,
		"total", pricing.Round2(order.TotalAmount),
	)

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.log.Warn("failed to publish order placed event", "order_id", order.ID, "error", err)
	}

	return order, nil
}

// GetOrder returns one of the customer's orders
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	if order.CustomerID != DefaultCustomerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the customer's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListByCustomer(ctx, DefaultCustomerID)
}

// UpdateStatus moves an order to status and records the matching timestamp
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() || status == models.StatusPlaced {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var oldStatus models.OrderStatus
	order, err := s.orders.Update(ctx, id, func(o *models.Order) error {
		if o.Status.Terminal() {
			return ErrOrderClosed
		}
		oldStatus = o.Status
		applyStatus(o, status, s.now())
		return nil
	})
	if err != nil {
		return nil, mapOrderErr(err)
	}

	s.log.Info("order status updated", "order_id", id, "from", oldStatus, "to", status)
	s.publishStatus(ctx, order, oldStatus)
	return order, nil
}

// CancelOrder cancels an order that has not left the restaurant
func (s *OrderService) CancelOrder(ctx context.Context, id int64, reason string) (*models.Order, error) {
	var oldStatus models.OrderStatus
	order, err := s.orders.Update(ctx, id, func(o *models.Order) error {
		if o.CustomerID != DefaultCustomerID {
			return repository.ErrOrderNotFound
		}
		if !o.Status.Cancellable() {
			return fmt.Errorf("%w: status is %s", ErrNotCancellable, o.Status)
		}
		oldStatus = o.Status
		o.Status = models.StatusCancelled
		o.CancellationReason = strings.TrimSpace(reason)
		return nil
	})
	if err != nil {
		return nil, mapOrderErr(err)
	}

	s.log.Info("order cancelled", "order_id", id, "from", oldStatus, "reason", order.CancellationReason)
	s.publishStatus(ctx, order, oldStatus)
	return order, nil
}

// Reorder places a new order with the items of a previous one. A zero
// addressID keeps the previous delivery address.
func (s *OrderService) Reorder(ctx context.Context, previousID, addressID int64) (*models.Order, error) {
	previous, err := s.GetOrder(ctx, previousID)
	if err != nil {
		return nil, err
	}

	if addressID == 0 {
		addressID = previous.DeliveryAddressID
	}

	req := models.CreateOrderRequest{
		RestaurantID:        previous.RestaurantID,
		DeliveryAddressID:   addressID,
		Items:               make([]models.OrderItemRequest, 0, len(previous.Items)),
		SpecialInstructions: "Reorder from order #" + previous.OrderNumber,
	}
	for _, item := range previous.Items {
		req.Items = append(req.Items, models.OrderItemRequest{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			SpecialRequests: item.SpecialRequests,
		})
	}

	return s.CreateOrder(ctx, req)
}

func (s *OrderService) quote(restaurant *models.Restaurant, address *models.Address, items []models.OrderItem) pricing.Quote {
	itemsTotal := decimal.Zero
	for _, item := range items {
		itemsTotal = itemsTotal.Add(item.Subtotal)
	}

	rates := s.pricing.Rates
	if s.pricing.DistanceFees {
		km := pricing.DistanceKm(restaurant.Latitude, restaurant.Longitude, address.Latitude, address.Longitude)
		rates = rates.WithDeliveryFee(pricing.DistanceFee(km))
	}
	return rates.Quote(itemsTotal)
}

func (s *OrderService) publishStatus(ctx context.Context, order *models.Order, oldStatus models.OrderStatus) {
	if err := s.publisher.PublishStatusChanged(ctx, order, oldStatus); err != nil {
		s.log.Warn("failed to publish status change", "order_id", order.ID, "status", order.Status, "error", err)
	}
}

func applyStatus(o *models.Order, status models.OrderStatus, now time.Time) {
	o.Status = status
	switch status {
	case models.StatusConfirmed:
		o.ConfirmedAt = &now
	case models.StatusReady:
		o.ReadyAt = &now
	case models.StatusPickedUp:
		o.PickedUpAt = &now
	case models.StatusDelivered:
		o.DeliveredAt = &now
	}
}

func mapOrderErr(err error) error {
	if errors.Is(err, repository.ErrOrderNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// generateOrderNumber builds a human readable order number from the time and
// a random suffix
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
