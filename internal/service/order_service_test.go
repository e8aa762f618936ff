package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
	"github.com/JustYuvaraj/fooddelivery/internal/repository"
	"github.com/JustYuvaraj/fooddelivery/pkg/logger"
)

type recordedEvent struct {
	kind      string
	orderID   int64
	oldStatus models.OrderStatus
	newStatus models.OrderStatus
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, o *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{kind: "placed", orderID: o.ID, newStatus: o.Status})
	return p.err
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, o *models.Order, old models.OrderStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{kind: "status", orderID: o.ID, oldStatus: old, newStatus: o.Status})
	return p.err
}

func newTestOrderService(t *testing.T, pub EventPublisher, distanceFees bool) *OrderService {
	t.Helper()
	catalog, err := repository.LoadCatalog("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	repo := repository.NewInMemoryCatalogRepository(catalog)
	return NewOrderService(
		repo.Restaurants(),
		repo.Products(),
		repo.Addresses(),
		repository.NewInMemoryOrderRepository(),
		pub,
		OrderPricing{Rates: pricing.DefaultRates(), DistanceFees: distanceFees},
		logger.Discard(),
	)
}

func placeOrder(t *testing.T, svc *OrderService) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), models.CreateOrderRequest{
		RestaurantID:      1,
		DeliveryAddressID: 1,
		Items: []models.OrderItemRequest{
			{ProductID: 1, Quantity: 2, SpecialRequests: "extra basil"},
			{ProductID: 3, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestOrderService_CreateOrder(t *testing.T) {
	svc := newTestOrderService(t, &recordingPublisher{}, false)

	tests := []struct {
		name    string
		req     models.CreateOrderRequest
		wantErr error
	}{
		{
			name: "valid order with single item",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 1, Quantity: 2}},
			},
		},
		{
			name: "valid order with multiple items",
			req: models.CreateOrderRequest{
				RestaurantID: 2, DeliveryAddressID: 2,
				Items: []models.OrderItemRequest{{ProductID: 4, Quantity: 1}, {ProductID: 5, Quantity: 3}},
			},
		},
		{
			name: "empty order",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{},
			},
			wantErr: ErrEmptyOrder,
		},
		{
			name: "invalid quantity - zero",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 1, Quantity: 0}},
			},
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "invalid quantity - negative",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 1, Quantity: -1}},
			},
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "product not found",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 99999, Quantity: 1}},
			},
			wantErr: ErrInvalidProduct,
		},
		{
			name: "product from another restaurant",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 4, Quantity: 1}},
			},
			wantErr: ErrInvalidProduct,
		},
		{
			name: "unavailable product",
			req: models.CreateOrderRequest{
				RestaurantID: 3, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 8, Quantity: 1}},
			},
			wantErr: ErrProductUnavailable,
		},
		{
			name: "unknown restaurant",
			req: models.CreateOrderRequest{
				RestaurantID: 77, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 1, Quantity: 1}},
			},
			wantErr: ErrRestaurantNotFound,
		},
		{
			name: "restaurant not accepting orders",
			req: models.CreateOrderRequest{
				RestaurantID: 4, DeliveryAddressID: 1,
				Items: []models.OrderItemRequest{{ProductID: 9, Quantity: 1}},
			},
			wantErr: ErrRestaurantUnavailable,
		},
		{
			name: "unknown address",
			req: models.CreateOrderRequest{
				RestaurantID: 1, DeliveryAddressID: 77,
				Items: []models.OrderItemRequest{{ProductID: 1, Quantity: 1}},
			},
			wantErr: ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.CreateOrder(context.Background(), tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order.ID == 0 {
				t.Error("order ID is empty")
			}
			if !strings.HasPrefix(order.OrderNumber, "ORD-") {
				t.Errorf("unexpected order number %q", order.OrderNumber)
			}
			if order.Status != models.StatusPlaced {
				t.Errorf("expected status PLACED, got %s", order.Status)
			}
			if len(order.Items) != len(tt.req.Items) {
				t.Errorf("expected %d items, got %d", len(tt.req.Items), len(order.Items))
			}
		})
	}
}

func TestOrderService_CreateOrder_Totals(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestOrderService(t, pub, false)

	order := placeOrder(t, svc)

	// 2 x 12.99 + 5.99 = 31.97; tax 5% = 1.5985; flat fee 50.
	want := map[string]string{
		"items":    "31.97",
		"fee":      "50",
		"tax":      "1.5985",
		"total":    "83.5685",
		"subtotal": "25.98",
	}
	got := map[string]decimal.Decimal{
		"items":    order.ItemsTotal,
		"fee":      order.DeliveryFee,
		"tax":      order.TaxAmount,
		"total":    order.TotalAmount,
		"subtotal": order.Items[0].Subtotal,
	}
	for k, w := range want {
		if !got[k].Equal(decimal.RequireFromString(w)) {
			t.Errorf("%s = %s, want %s", k, got[k], w)
		}
	}
	if order.Items[0].SpecialRequests != "extra basil" {
		t.Errorf("special requests lost: %q", order.Items[0].SpecialRequests)
	}
	if order.RestaurantName != "Pizza Palace" {
		t.Errorf("restaurant name = %q", order.RestaurantName)
	}

	if len(pub.events) != 1 || pub.events[0].kind != "placed" || pub.events[0].orderID != order.ID {
		t.Errorf("expected one placed event, got %+v", pub.events)
	}
}

func TestOrderService_CreateOrder_DistanceFee(t *testing.T) {
	svc := newTestOrderService(t, &recordingPublisher{}, true)

	order := placeOrder(t, svc)

	// Pizza Palace to the Home address is a little over 4 km.
	if !order.DeliveryFee.Equal(decimal.NewFromInt(100)) {
		t.Errorf("fee = %s, want 100", order.DeliveryFee)
	}
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	svc := newTestOrderService(t, &recordingPublisher{err: errors.New("broker down")}, false)

	order := placeOrder(t, svc)

	if _, err := svc.UpdateStatus(context.Background(), order.ID, models.StatusConfirmed); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestOrderService(t, pub, false)
	ctx := context.Background()
	order := placeOrder(t, svc)

	steps := []models.OrderStatus{
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusAssigned,
		models.StatusPickedUp,
		models.StatusOutForDelivery,
		models.StatusDelivered,
	}
	for _, status := range steps {
		updated, err := svc.UpdateStatus(ctx, order.ID, status)
		if err != nil {
			t.Fatalf("update to %s: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("status = %s, want %s", updated.Status, status)
		}
	}

	final, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	for name, ts := range map[string]*time.Time{
		"confirmedAt": final.ConfirmedAt,
		"readyAt":     final.ReadyAt,
		"pickedUpAt":  final.PickedUpAt,
		"deliveredAt": final.DeliveredAt,
	} {
		if ts == nil || ts.IsZero() {
			t.Errorf("%s not recorded", name)
		}
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, models.StatusPreparing); !errors.Is(err, ErrOrderClosed) {
		t.Errorf("expected ErrOrderClosed, got %v", err)
	}

	// One placed event plus one per status change.
	if len(pub.events) != 1+len(steps) {
		t.Fatalf("expected %d events, got %d", 1+len(steps), len(pub.events))
	}
	last := pub.events[len(pub.events)-1]
	if last.oldStatus != models.StatusOutForDelivery || last.newStatus != models.StatusDelivered {
		t.Errorf("unexpected last event %+v", last)
	}
}

func TestOrderService_UpdateStatus_Invalid(t *testing.T) {
	svc := newTestOrderService(t, &recordingPublisher{}, false)
	order := placeOrder(t, svc)

	tests := []struct {
		name    string
		id      int64
		status  models.OrderStatus
		wantErr error
	}{
		{"unknown status", order.ID, "COOKING", ErrInvalidStatus},
		{"back to placed", order.ID, models.StatusPlaced, ErrInvalidStatus},
		{"unknown order", 999, models.StatusConfirmed, ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(context.Background(), tt.id, tt.status)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOrderService_CancelOrder(t *testing.T) {
	tests := []struct {
		name    string
		advance []models.OrderStatus
		wantErr error
	}{
		{name: "placed", advance: nil},
		{name: "preparing", advance: []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing}},
		{name: "picked up", advance: []models.OrderStatus{models.StatusPickedUp}, wantErr: ErrNotCancellable},
		{name: "out for delivery", advance: []models.OrderStatus{models.StatusOutForDelivery}, wantErr: ErrNotCancellable},
		{name: "delivered", advance: []models.OrderStatus{models.StatusDelivered}, wantErr: ErrNotCancellable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestOrderService(t, &recordingPublisher{}, false)
			ctx := context.Background()
			order := placeOrder(t, svc)
			for _, s := range tt.advance {
				if _, err := svc.UpdateStatus(ctx, order.ID, s); err != nil {
					t.Fatalf("advance to %s: %v", s, err)
				}
			}

			cancelled, err := svc.CancelOrder(ctx, order.ID, "  changed my mind ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cancelled.Status != models.StatusCancelled {
				t.Errorf("status = %s", cancelled.Status)
			}
			if cancelled.CancellationReason != "changed my mind" {
				t.Errorf("reason = %q", cancelled.CancellationReason)
			}
		})
	}
}

func TestOrderService_Reorder(t *testing.T) {
	svc := newTestOrderService(t, &recordingPublisher{}, false)
	ctx := context.Background()
	previous := placeOrder(t, svc)

	again, err := svc.Reorder(ctx, previous.ID, 0)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if again.ID == previous.ID {
		t.Error("reorder must create a new order")
	}
	if again.DeliveryAddressID != previous.DeliveryAddressID {
		t.Errorf("address = %d, want %d", again.DeliveryAddressID, previous.DeliveryAddressID)
	}
	if !again.TotalAmount.Equal(previous.TotalAmount) {
		t.Errorf("total = %s, want %s", again.TotalAmount, previous.TotalAmount)
	}
	if again.SpecialInstructions != "Reorder from order #"+previous.OrderNumber {
		t.Errorf("instructions = %q", again.SpecialInstructions)
	}

	moved, err := svc.Reorder(ctx, previous.ID, 2)
	if err != nil {
		t.Fatalf("reorder to work: %v", err)
	}
	if moved.DeliveryAddressID != 2 {
		t.Errorf("address = %d, want 2", moved.DeliveryAddressID)
	}

	if _, err := svc.Reorder(ctx, 999, 0); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}

	orders, err := svc.ListOrders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 3 {
		t.Errorf("expected 3 orders, got %d", len(orders))
	}
}

func TestCatalogService(t *testing.T) {
	catalog, err := repository.LoadCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewInMemoryCatalogRepository(catalog)
	svc := NewCatalogService(repo.Restaurants(), repo.Products(), repo.Addresses())
	ctx := context.Background()

	restaurants, err := svc.ListRestaurants(ctx)
	if err != nil || len(restaurants) == 0 {
		t.Fatalf("list restaurants: %v (%d)", err, len(restaurants))
	}

	menu, err := svc.GetMenu(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(menu) != 3 {
		t.Errorf("expected 3 products for Sushi Supreme, got %d", len(menu))
	}

	if _, err := svc.GetRestaurant(ctx, 99); !errors.Is(err, repository.ErrRestaurantNotFound) {
		t.Errorf("expected ErrRestaurantNotFound, got %v", err)
	}

	addresses, err := svc.ListAddresses(ctx)
	if err != nil || len(addresses) != 2 {
		t.Errorf("list addresses: %v (%d)", err, len(addresses))
	}
}
