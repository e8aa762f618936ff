package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JustYuvaraj/fooddelivery/internal/config"
	"github.com/JustYuvaraj/fooddelivery/internal/middleware"
)

// RouterConfig holds everything the HTTP API needs
type RouterConfig struct {
	Auth           config.AuthConfig
	AllowedOrigins []string
	Health         *HealthHandler
	Catalog        *CatalogHandler
	Orders         *OrderHandler
	Logger         *slog.Logger
}

// NewRouter builds the chi router with middleware and all API routes
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customer", func(r chi.Router) {
			r.Get("/restaurants", cfg.Catalog.ListRestaurants)
			r.Get("/restaurants/{restaurantId}", cfg.Catalog.GetRestaurant)
			r.Get("/restaurants/{restaurantId}/menu", cfg.Catalog.GetMenu)
			r.Get("/addresses", cfg.Catalog.ListAddresses)

			r.Group(func(r chi.Router) {
				r.Use(middleware.APIKeyAuth(cfg.Auth))
				r.Post("/orders", cfg.Orders.CreateOrder)
				r.Get("/orders", cfg.Orders.ListOrders)
				r.Get("/orders/{orderId}", cfg.Orders.GetOrder)
				r.Put("/orders/{orderId}/cancel", cfg.Orders.CancelOrder)
				r.Post("/orders/{orderId}/reorder", cfg.Orders.Reorder)
			})
		})

		r.Route("/restaurant", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.Auth))
			r.Put("/orders/{orderId}/status", cfg.Orders.UpdateStatus)
		})
	})

	return r
}
