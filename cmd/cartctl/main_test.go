package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustYuvaraj/fooddelivery/internal/apiclient"
	"github.com/JustYuvaraj/fooddelivery/internal/cart"
	"github.com/JustYuvaraj/fooddelivery/internal/checkout"
	"github.com/JustYuvaraj/fooddelivery/internal/config"
	"github.com/JustYuvaraj/fooddelivery/internal/events"
	"github.com/JustYuvaraj/fooddelivery/internal/handlers"
	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
	"github.com/JustYuvaraj/fooddelivery/internal/repository"
	"github.com/JustYuvaraj/fooddelivery/internal/service"
	"github.com/JustYuvaraj/fooddelivery/internal/storage"
	"github.com/JustYuvaraj/fooddelivery/internal/tracking"
	"github.com/JustYuvaraj/fooddelivery/pkg/logger"
)

const testAPIKey = "cartctl-test"

func newTestApp(t *testing.T) (*app, *apiclient.Client, *storage.Memory) {
	t.Helper()

	catalog, err := repository.LoadCatalog("")
	require.NoError(t, err)
	repo := repository.NewInMemoryCatalogRepository(catalog)
	log := logger.Discard()

	orders := service.NewOrderService(
		repo.Restaurants(), repo.Products(), repo.Addresses(),
		repository.NewInMemoryOrderRepository(),
		events.Nop{},
		service.OrderPricing{Rates: pricing.DefaultRates()},
		log,
	)
	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterConfig{
		Auth:    config.AuthConfig{APIKeys: []string{testAPIKey}},
		Health:  handlers.NewHealthHandler(log, "test", nil),
		Catalog: handlers.NewCatalogHandler(service.NewCatalogService(repo.Restaurants(), repo.Products(), repo.Addresses()), log),
		Orders:  handlers.NewOrderHandler(orders, log),
		Logger:  log,
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(srv.URL+"/api/v1", testAPIKey, apiclient.WithLogger(log))
	mem := storage.NewMemory()

	cfg := &config.Config{
		Pricing: config.PricingConfig{
			DeliveryFee: decimal.NewFromInt(50),
			TaxRate:     decimal.RequireFromString("0.05"),
		},
		Client: config.ClientConfig{PollInterval: 10 * time.Millisecond},
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		api:      client,
		storage:  mem,
		notifier: tracking.Disconnected{},
	}
	return a, client, mem
}

// run executes one cartctl invocation, as a fresh process would
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestCartctl_CartCommands(t *testing.T) {
	a, _, mem := newTestApp(t)

	out, err := run(t, a, "add", "1", "1", "--qty", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "cart: 2 items, total 25.98")

	out, err = run(t, a, "add", "1", "3", "--note", "extra garlic")
	require.NoError(t, err)
	assert.Contains(t, out, "cart: 3 items, total 31.97")

	out, err = run(t, a, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "restaurant 1")
	assert.Contains(t, out, "Margherita Pizza")
	assert.Contains(t, out, "extra garlic")
	assert.Regexp(t, `delivery\s+50\.00`, out)
	assert.Regexp(t, `tax\s+1\.60`, out)
	assert.Regexp(t, `total\s+83\.57`, out)

	out, err = run(t, a, "add", "2", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "replacing cart from restaurant 1")
	assert.Contains(t, out, "cart: 1 items, total 9.99")

	out, err = run(t, a, "update", "4", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "cart: 3 items, total 29.97")

	out, err = run(t, a, "remove", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "cart: 0 items, total 0.00")

	_, ok, err := mem.Get(cart.RestaurantKey)
	require.NoError(t, err)
	assert.False(t, ok, "restaurant key is removed with the last item")

	out, err = run(t, a, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "cart is empty")
}

func TestCartctl_AddRejectsBadProducts(t *testing.T) {
	a, _, _ := newTestApp(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unavailable product", []string{"add", "3", "8"}, "currently unavailable"},
		{"product from another menu", []string{"add", "1", "4"}, "not on the menu"},
		{"bad product id", []string{"add", "1", "pizza"}, "invalid product ID"},
		{"zero quantity", []string{"add", "1", "1", "--qty", "0"}, "invalid argument"},
		{"unknown restaurant", []string{"add", "42", "1"}, "Restaurant not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, a, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 0, a.store.ItemCount())
		})
	}
}

func TestCartctl_CheckoutAndTrack(t *testing.T) {
	a, client, _ := newTestApp(t)
	ctx := context.Background()

	_, err := run(t, a, "checkout")
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	_, err = run(t, a, "add", "1", "2")
	require.NoError(t, err)

	out, err := run(t, a, "checkout", "--instructions", "ring twice")
	require.NoError(t, err)
	assert.Contains(t, out, "placed (id 1), total 65.74")
	assert.Contains(t, out, "cart: 0 items, total 0.00")

	order, err := client.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.DeliveryAddressID, "default address is used")
	assert.Equal(t, "ring twice", order.SpecialInstructions)

	out, err = run(t, a, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, order.OrderNumber)
	assert.Contains(t, out, string(models.StatusPlaced))

	_, err = client.UpdateOrderStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)

	out, err = run(t, a, "track", strconv.FormatInt(order.ID, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "Order delivered! Enjoy your meal!")

	out, err = run(t, a, "reorder", "1", "--address", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "placed (id 2)")

	out, err = run(t, a, "cancel", "2", "--reason", "duplicate")
	require.NoError(t, err)
	assert.Contains(t, out, string(models.StatusCancelled))
}

func TestCartctl_CheckoutFailureKeepsCart(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, err := run(t, a, "add", "1", "1")
	require.NoError(t, err)

	_, err = run(t, a, "checkout", "--address", "99")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrNotFound)

	out, err := run(t, a, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Margherita Pizza")
}

func TestOpenStorage(t *testing.T) {
	log := logger.Discard()
	ctx := context.Background()

	s, closeFn, err := openStorage(ctx, config.StorageConfig{Driver: "memory"}, log)
	require.NoError(t, err)
	assert.IsType(t, &storage.Memory{}, s)
	assert.NoError(t, closeFn())

	path := t.TempDir() + "/nested/cart.db"
	s, closeFn, err = openStorage(ctx, config.StorageConfig{Driver: "sqlite", SQLitePath: path}, log)
	require.NoError(t, err)
	require.NoError(t, s.Set(cart.ItemsKey, "[]"))
	assert.NoError(t, closeFn())

	_, _, err = openStorage(ctx, config.StorageConfig{Driver: "redis"}, log)
	assert.ErrorContains(t, err, "unknown cart storage driver")
}
