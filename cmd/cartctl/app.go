package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JustYuvaraj/fooddelivery/internal/apiclient"
	"github.com/JustYuvaraj/fooddelivery/internal/cart"
	"github.com/JustYuvaraj/fooddelivery/internal/checkout"
	"github.com/JustYuvaraj/fooddelivery/internal/config"
	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
	"github.com/JustYuvaraj/fooddelivery/internal/storage"
	"github.com/JustYuvaraj/fooddelivery/internal/storage/postgres"
	"github.com/JustYuvaraj/fooddelivery/internal/storage/sqlite"
	"github.com/JustYuvaraj/fooddelivery/internal/tracking"
)

// backend is the part of the API the CLI talks to
type backend interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID int64) ([]models.Product, error)
	ListAddresses(ctx context.Context) ([]models.Address, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	CancelOrder(ctx context.Context, id int64, reason string) (*models.Order, error)
	Reorder(ctx context.Context, id, addressID int64) (*models.Order, error)
}

// app wires the CLI's collaborators. Fields left nil are built from cfg on
// first use.
type app struct {
	cfg *config.Config
	log *slog.Logger

	api      backend
	storage  cart.Storage
	notifier tracking.Notifier

	store   *cart.Store
	closers []func() error
}

func (a *app) setup(ctx context.Context, out io.Writer) error {
	if a.api == nil {
		a.api = apiclient.New(a.cfg.Client.BaseURL, a.cfg.Client.APIKey,
			apiclient.WithHTTPClient(&http.Client{Timeout: a.cfg.Client.Timeout}),
			apiclient.WithLogger(a.log),
		)
	}

	if a.storage == nil {
		s, closeFn, err := openStorage(ctx, a.cfg.Storage, a.log)
		if err != nil {
			return err
		}
		a.storage = s
		a.closers = append(a.closers, closeFn)
	}

	a.store = cart.NewStore(a.storage, a.log)
	a.store.Subscribe(func(st cart.State) {
		fmt.Fprintf(out, "cart: %d items, total %s\n", st.ItemCount(), money(st.Total()))
	})
	return nil
}

func (a *app) checkout() *checkout.Service {
	rates := pricing.Rates{DeliveryFee: a.cfg.Pricing.DeliveryFee, TaxRate: a.cfg.Pricing.TaxRate}
	return checkout.NewService(a.store, a.api, rates, a.log)
}

// tracker follows orderID, using push updates when a broker is configured
func (a *app) tracker(orderID int64, onUpdate tracking.UpdateFunc) *tracking.Tracker {
	if a.notifier == nil {
		if a.cfg.Events.AMQPURL == "" {
			a.notifier = tracking.Disconnected{}
		} else {
			n := tracking.DialNotifier(a.cfg.Events.AMQPURL, a.cfg.Events.Exchange, a.log)
			a.closers = append(a.closers, n.Close)
			a.notifier = n
		}
	}

	return tracking.NewTracker(orderID, a.api, a.notifier,
		tracking.WithPollInterval(a.cfg.Client.PollInterval),
		tracking.WithLogger(a.log),
		tracking.OnUpdate(onUpdate),
	)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to release resource", "error", err)
		}
	}
	a.closers = nil
}

// openStorage builds the cart storage selected by cfg.Driver
func openStorage(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (cart.Storage, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemory(), func() error { return nil }, nil

	case "sqlite":
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("cart storage opened", "driver", "sqlite", "path", cfg.SQLitePath)
		return s, s.Close, nil

	case "postgres":
		if err := postgres.RunMigrations(cfg.PostgresDSN, log); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect cart storage: %w", err)
		}
		log.Debug("cart storage opened", "driver", "postgres", "namespace", cfg.Namespace)
		return postgres.New(pool, cfg.Namespace), func() error { pool.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart storage driver %q", cfg.Driver)
	}
}
