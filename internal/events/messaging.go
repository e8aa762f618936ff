// Package events publishes order lifecycle events to a RabbitMQ topic
// exchange.
package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

const (
	DefaultExchange = "fooddelivery.events"

	OrderPlacedRoutingKey = "order.placed"
	orderStatusPrefix     = "order.status."

	EventOrderPlaced   = "OrderPlaced"
	EventStatusChanged = "OrderStatusChanged"
)

// OrderStatusRoutingKey is the routing key for status changes of one order
func OrderStatusRoutingKey(orderID int64) string {
	return orderStatusPrefix + strconv.FormatInt(orderID, 10)
}

// OrderEvent is the message body for every order event. Order carries the
// full order after the change, so consumers can replace their copy.
type OrderEvent struct {
	EventID    string             `json:"eventId"`
	EventType  string             `json:"eventType"`
	OrderID    int64              `json:"orderId"`
	OldStatus  models.OrderStatus `json:"oldStatus,omitempty"`
	NewStatus  models.OrderStatus `json:"newStatus"`
	OccurredAt time.Time          `json:"occurredAt"`
	Order      models.Order       `json:"order"`
}

// DecodeOrderEvent parses a message body produced by Publisher
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return OrderEvent{}, fmt.Errorf("unmarshal order event: %w", err)
	}
	if ev.OrderID == 0 || ev.Order.ID != ev.OrderID {
		return OrderEvent{}, fmt.Errorf("order event %q has inconsistent order id", ev.EventID)
	}
	return ev, nil
}

// DeclareExchange declares the durable topic exchange used for order events
func DeclareExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
