package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	// Update applies fn to the stored order atomically and returns the result.
	// An error from fn aborts the update.
	Update(ctx context.Context, id int64, fn func(*models.Order) error) (*models.Order, error)
}

// InMemoryOrderRepository keeps orders in a map guarded by a mutex
type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[int64]models.Order
	nextID int64
}

// NewInMemoryOrderRepository creates an empty order repository
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[int64]models.Order),
		nextID: 1,
	}
}

// Create assigns the next id to order and stores a copy
func (r *InMemoryOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

// GetByID returns a copy of the order
func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := copyOrder(order)
	return &out, nil
}

// ListByCustomer returns the customer's orders, newest first
func (r *InMemoryOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0)
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].PlacedAt.Equal(orders[j].PlacedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].PlacedAt.After(orders[j].PlacedAt)
	})
	return orders, nil
}

// Update runs fn on a copy of the order under the write lock and stores the
// result if fn succeeds.
func (r *InMemoryOrderRepository) Update(ctx context.Context, id int64, fn func(*models.Order) error) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	order := copyOrder(stored)
	if err := fn(&order); err != nil {
		return nil, err
	}
	r.orders[id] = copyOrder(order)
	return &order, nil
}

func copyOrder(o models.Order) models.Order {
	if o.Items != nil {
		items := make([]models.OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
