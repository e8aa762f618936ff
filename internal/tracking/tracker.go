package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

// DefaultPollInterval is used when no interval is configured
const DefaultPollInterval = 5 * time.Second

var statusMessages = map[models.OrderStatus]string{
	models.StatusPlaced:         "Order placed successfully!",
	models.StatusConfirmed:      "Order confirmed by restaurant",
	models.StatusPreparing:      "Restaurant is preparing your order",
	models.StatusReady:          "Order is ready for pickup",
	models.StatusAssigned:       "Delivery agent assigned",
	models.StatusPickedUp:       "Order picked up by delivery agent",
	models.StatusOutForDelivery: "Order is out for delivery",
	models.StatusDelivered:      "Order delivered! Enjoy your meal!",
	models.StatusCancelled:      "Order cancelled",
}

// StatusMessage is the customer-facing text for status
func StatusMessage(status models.OrderStatus) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return string(status)
}

// OrderFetcher loads the current state of an order
type OrderFetcher interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

// UpdateFunc is called with the new order and its status message whenever
// the order's status changes.
type UpdateFunc func(order models.Order, message string)

// Tracker holds the view state of a single order
type Tracker struct {
	orderID  int64
	fetcher  OrderFetcher
	notifier Notifier
	interval time.Duration
	onUpdate UpdateFunc
	log      *slog.Logger

	mu    sync.Mutex
	order *models.Order
}

// Option configures a Tracker
type Option func(*Tracker)

// WithPollInterval sets how often the backend is polled without push updates
func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithLogger sets the tracker's logger
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// OnUpdate registers the status change callback
func OnUpdate(fn UpdateFunc) Option {
	return func(t *Tracker) { t.onUpdate = fn }
}

// NewTracker creates a tracker for orderID. A nil notifier means no push
// updates.
func NewTracker(orderID int64, fetcher OrderFetcher, notifier Notifier, opts ...Option) *Tracker {
	if notifier == nil {
		notifier = Disconnected{}
	}
	t := &Tracker{
		orderID:  orderID,
		fetcher:  fetcher,
		notifier: notifier,
		interval: DefaultPollInterval,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Order returns the latest known order
func (t *Tracker) Order() (models.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.order == nil {
		return models.Order{}, false
	}
	return *t.order, true
}

// Run fetches the order and follows it until it reaches a terminal status,
// in which case it returns nil, or until ctx is done. Push updates are used
// while the notifier holds a live subscription; otherwise the backend is
// polled. The subscription is made before the first fetch so no event falls
// between the two. Poll failures are logged and retried on the next tick.
func (t *Tracker) Run(ctx context.Context) error {
	updates := make(chan models.Order, 16)
	pushing := false
	if t.notifier.Connected() {
		unsubscribe, ok := t.notifier.Subscribe(t.orderID, func(o models.Order) {
			select {
			case updates <- o:
			default:
				t.log.Warn("order update dropped, tracker is behind", "order_id", o.ID)
			}
		})
		defer unsubscribe()
		pushing = ok
	}

	initial, err := t.fetcher.GetOrder(ctx, t.orderID)
	if err != nil {
		return fmt.Errorf("fetch order %d: %w", t.orderID, err)
	}
	t.apply(*initial)
	if initial.Status.Terminal() {
		return nil
	}

	if pushing {
		t.log.Debug("tracking order with push updates", "order_id", t.orderID)
	} else {
		t.log.Debug("tracking order by polling", "order_id", t.orderID, "interval", t.interval)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		var next models.Order
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next = <-updates:
		case <-ticker.C:
			if pushing && t.notifier.Connected() {
				continue
			}
			o, err := t.fetcher.GetOrder(ctx, t.orderID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				t.log.Warn("order poll failed", "order_id", t.orderID, "error", err)
				continue
			}
			next = *o
		}

		if next.ID != t.orderID {
			continue
		}
		t.apply(next)
		if next.Status.Terminal() {
			return nil
		}
	}
}

// apply replaces the held order and reports status changes
func (t *Tracker) apply(o models.Order) {
	t.mu.Lock()
	changed := t.order == nil || t.order.Status != o.Status
	t.order = &o
	t.mu.Unlock()

	if changed && t.onUpdate != nil {
		t.onUpdate(o, StatusMessage(o.Status))
	}
}
