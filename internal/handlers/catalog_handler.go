package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JustYuvaraj/fooddelivery/internal/repository"
	"github.com/JustYuvaraj/fooddelivery/internal/service"
)

// CatalogHandler handles restaurant, menu and address requests
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// ListRestaurants handles GET /customer/restaurants
func (h *CatalogHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.service.ListRestaurants(r.Context())
	if err != nil {
		h.logger.Error("failed to list restaurants", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, restaurants, h.logger)
}

// GetRestaurant handles GET /customer/restaurants/{restaurantId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Restaurant not found
func (h *CatalogHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "restaurantId")
	if !ok {
		h.logger.Warn("invalid restaurant ID", "restaurantId", chi.URLParam(r, "restaurantId"))
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	restaurant, err := h.service.GetRestaurant(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err, id)
		return
	}

	WriteJSON(w, http.StatusOK, restaurant, h.logger)
}

// GetMenu handles GET /customer/restaurants/{restaurantId}/menu
func (h *CatalogHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "restaurantId")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	menu, err := h.service.GetMenu(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err, id)
		return
	}

	WriteJSON(w, http.StatusOK, menu, h.logger)
}

// ListAddresses handles GET /customer/addresses
func (h *CatalogHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.ListAddresses(r.Context())
	if err != nil {
		h.logger.Error("failed to list addresses", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, addresses, h.logger)
}

func (h *CatalogHandler) writeLookupError(w http.ResponseWriter, err error, id int64) {
	if errors.Is(err, repository.ErrRestaurantNotFound) {
		h.logger.Info("restaurant not found", "restaurantId", id)
		WriteError(w, http.StatusNotFound, "Restaurant not found", h.logger)
		return
	}

	h.logger.Error("catalog lookup failed", "restaurantId", id, "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
}
