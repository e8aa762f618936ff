package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/JustYuvaraj/fooddelivery/internal/config"
	"github.com/JustYuvaraj/fooddelivery/internal/events"
	"github.com/JustYuvaraj/fooddelivery/internal/handlers"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
	"github.com/JustYuvaraj/fooddelivery/internal/repository"
	"github.com/JustYuvaraj/fooddelivery/internal/service"
	"github.com/JustYuvaraj/fooddelivery/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type eventPublisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting food delivery api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"version", version,
	)

	catalog, err := repository.LoadCatalog(cfg.Catalog.File)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Info("catalog loaded",
		"restaurants", len(catalog.Restaurants),
		"products", len(catalog.Products),
		"addresses", len(catalog.Addresses),
	)

	// Initialize repositories
	catalogRepo := repository.NewInMemoryCatalogRepository(catalog)
	orderRepo := repository.NewInMemoryOrderRepository()

	publisher, conn := connectEvents(cfg.Events, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", "error", err)
		}
		if conn != nil {
			_ = conn.Close()
		}
	}()

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo.Restaurants(), catalogRepo.Products(), catalogRepo.Addresses())
	orderService := service.NewOrderService(
		catalogRepo.Restaurants(), catalogRepo.Products(), catalogRepo.Addresses(),
		orderRepo,
		publisher,
		service.OrderPricing{
			Rates:        pricing.Rates{DeliveryFee: cfg.Pricing.DeliveryFee, TaxRate: cfg.Pricing.TaxRate},
			DistanceFees: cfg.Pricing.DistanceFees,
		},
		log,
	)

	var eventsConnected func() bool
	if conn != nil {
		eventsConnected = func() bool { return !conn.IsClosed() }
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           cfg.Auth,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Health:         handlers.NewHealthHandler(log, version, eventsConnected),
		Catalog:        handlers.NewCatalogHandler(catalogService, log),
		Orders:         handlers.NewOrderHandler(orderService, log),
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// connectEvents dials the broker when one is configured. The API keeps
// serving without it; order events are then dropped.
func connectEvents(cfg config.EventsConfig, log *slog.Logger) (eventPublisher, *amqp.Connection) {
	if cfg.AMQPURL == "" {
		log.Info("order events disabled")
		return events.Nop{}, nil
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Warn("rabbitmq unavailable, order events disabled", "error", err)
		return events.Nop{}, nil
	}

	publisher, err := events.NewPublisher(conn, cfg.Exchange)
	if err != nil {
		log.Warn("failed to open event channel, order events disabled", "error", err)
		_ = conn.Close()
		return events.Nop{}, nil
	}

	log.Info("publishing order events", "exchange", cfg.Exchange)
	return publisher, conn
}
