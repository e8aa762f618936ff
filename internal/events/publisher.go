package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

const publishTimeout = 3 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends order events to the topic exchange
type Publisher struct {
	mu       sync.Mutex
	ch       channel
	exchange string
	now      func() time.Time
}

// NewPublisher opens a channel on conn and declares the exchange
func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareExchange(ch, exchange); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return newPublisher(ch, exchange), nil
}

func newPublisher(ch channel, exchange string) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the underlying channel
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishOrderPlaced announces a newly created order
func (p *Publisher) PublishOrderPlaced(ctx context.Context, o *models.Order) error {
	ev := OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  EventOrderPlaced,
		OrderID:    o.ID,
		NewStatus:  o.Status,
		OccurredAt: p.now(),
		Order:      *o,
	}
	return p.publish(ctx, OrderPlacedRoutingKey, ev)
}

// PublishStatusChanged announces that o moved from oldStatus to o.Status
func (p *Publisher) PublishStatusChanged(ctx context.Context, o *models.Order, oldStatus models.OrderStatus) error {
	ev := OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  EventStatusChanged,
		OrderID:    o.ID,
		OldStatus:  oldStatus,
		NewStatus:  o.Status,
		OccurredAt: p.now(),
		Order:      *o,
	}
	return p.publish(ctx, OrderStatusRoutingKey(o.ID), ev)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		pubCtx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.EventID,
			Timestamp:    ev.OccurredAt,
			Type:         ev.EventType,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrderPlaced(context.Context, *models.Order) error { return nil }

func (Nop) PublishStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}

func (Nop) Close() error { return nil }
