package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "PLACED"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReady          OrderStatus = "READY"
	StatusAssigned       OrderStatus = "ASSIGNED"
	StatusPickedUp       OrderStatus = "PICKED_UP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

var knownStatuses = map[OrderStatus]bool{
	StatusPlaced:         true,
	StatusConfirmed:      true,
	StatusPreparing:      true,
	StatusReady:          true,
	StatusAssigned:       true,
	StatusPickedUp:       true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusCancelled:      true,
}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	return knownStatuses[s]
}

// Terminal reports whether no further transitions are possible
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether a customer may still cancel the order
func (s OrderStatus) Cancellable() bool {
	switch s {
	case StatusPickedUp, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return false
	default:
		return true
	}
}

// CreateOrderRequest is the body of POST /customer/orders
type CreateOrderRequest struct {
	RestaurantID        int64              `json:"restaurantId"`
	DeliveryAddressID   int64              `json:"deliveryAddressId"`
	Items               []OrderItemRequest `json:"items"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
}

// OrderItemRequest is a single line of an order request
type OrderItemRequest struct {
	ProductID       int64  `json:"productId"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// UpdateStatusRequest is the body of PUT /restaurant/orders/{orderId}/status
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// Order represents a placed order
type Order struct {
	ID                  int64           `json:"id"`
	OrderNumber         string          `json:"orderNumber"`
	CustomerID          int64           `json:"customerId"`
	RestaurantID        int64           `json:"restaurantId"`
	RestaurantName      string          `json:"restaurantName"`
	DeliveryAddressID   int64           `json:"deliveryAddressId"`
	Status              OrderStatus     `json:"status"`
	Items               []OrderItem     `json:"items"`
	ItemsTotal          decimal.Decimal `json:"itemsTotal"`
	DeliveryFee         decimal.Decimal `json:"deliveryFee"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	DeliveryLatitude    float64         `json:"deliveryLatitude"`
	DeliveryLongitude   float64         `json:"deliveryLongitude"`
	PlacedAt            time.Time       `json:"placedAt"`
	ConfirmedAt         *time.Time      `json:"confirmedAt,omitempty"`
	ReadyAt             *time.Time      `json:"readyAt,omitempty"`
	PickedUpAt          *time.Time      `json:"pickedUpAt,omitempty"`
	DeliveredAt         *time.Time      `json:"deliveredAt,omitempty"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
	CancellationReason  string          `json:"cancellationReason,omitempty"`
}

// OrderItem is a priced line of a placed order
type OrderItem struct {
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
}
