// Package tracking follows a placed order until it is delivered or
// cancelled. Updates arrive through a best-effort push Notifier; when no
// push channel is available the Tracker polls the backend instead.
package tracking

import (
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JustYuvaraj/fooddelivery/internal/events"
	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

// Notifier pushes order updates. Subscribe reports ok=false when no
// subscription could be made, for instance while not connected; the returned
// unsubscribe is then a no-op.
type Notifier interface {
	Connected() bool
	Subscribe(orderID int64, fn func(models.Order)) (unsubscribe func(), ok bool)
}

// Disconnected is a Notifier that never delivers anything
type Disconnected struct{}

func (Disconnected) Connected() bool { return false }

func (Disconnected) Subscribe(int64, func(models.Order)) (func(), bool) { return func() {}, false }

// AMQPNotifier receives order status events from RabbitMQ
type AMQPNotifier struct {
	conn     *amqp.Connection
	exchange string
	log      *slog.Logger
}

// DialNotifier connects to url. Failure is logged and yields a notifier that
// is simply not connected; it is never an error for the caller.
func DialNotifier(url, exchange string, log *slog.Logger) *AMQPNotifier {
	if log == nil {
		log = slog.Default()
	}
	if exchange == "" {
		exchange = events.DefaultExchange
	}
	n := &AMQPNotifier{exchange: exchange, log: log}
	if url == "" {
		return n
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Warn("order updates unavailable, falling back to polling", "error", err)
		return n
	}
	n.conn = conn
	return n
}

// Connected reports whether the broker connection is open
func (n *AMQPNotifier) Connected() bool {
	return n.conn != nil && !n.conn.IsClosed()
}

// Close closes the broker connection
func (n *AMQPNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// Subscribe delivers every status event for orderID to fn until the returned
// function is called. fn runs on a consumer goroutine and must not call the
// unsubscribe function itself. ok is false when the queue could not be set
// up; the caller then gets no updates.
func (n *AMQPNotifier) Subscribe(orderID int64, fn func(models.Order)) (func(), bool) {
	if !n.Connected() {
		return func() {}, false
	}

	ch, msgs, err := n.consume(orderID)
	if err != nil {
		n.log.Warn("order update subscription failed", "order_id", orderID, "error", err)
		return func() {}, false
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := events.DecodeOrderEvent(msg.Body)
				if err != nil {
					n.log.Warn("dropping undecodable order event", "order_id", orderID, "error", err)
					continue
				}
				fn(ev.Order)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			_ = ch.Close()
			wg.Wait()
		})
	}, true
}

// consume declares an exclusive auto-delete queue bound to the order's
// status routing key
func (n *AMQPNotifier) consume(orderID int64) (*amqp.Channel, <-chan amqp.Delivery, error) {
	ch, err := n.conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	fail := func(err error) (*amqp.Channel, <-chan amqp.Delivery, error) {
		_ = ch.Close()
		return nil, nil, err
	}

	if err := events.DeclareExchange(ch, n.exchange); err != nil {
		return fail(err)
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fail(err)
	}

	if err := ch.QueueBind(q.Name, events.OrderStatusRoutingKey(orderID), n.exchange, false, nil); err != nil {
		return fail(err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // autoAck
		true,  // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fail(err)
	}
	return ch, msgs, nil
}
