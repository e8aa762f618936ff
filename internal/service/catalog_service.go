package service

import (
	"context"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/repository"
)

// CatalogService handles read access to restaurants, menus and addresses
type CatalogService struct {
	restaurants repository.RestaurantRepository
	products    repository.ProductRepository
	addresses   repository.AddressRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(restaurants repository.RestaurantRepository, products repository.ProductRepository, addresses repository.AddressRepository) *CatalogService {
	return &CatalogService{
		restaurants: restaurants,
		products:    products,
		addresses:   addresses,
	}
}

// ListRestaurants returns all restaurants
func (s *CatalogService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.GetAll(ctx)
}

// GetRestaurant returns a restaurant by ID
func (s *CatalogService) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	return s.restaurants.GetByID(ctx, id)
}

// GetMenu returns every product of a restaurant, available or not
func (s *CatalogService) GetMenu(ctx context.Context, restaurantID int64) ([]models.Product, error) {
	return s.products.ListByRestaurant(ctx, restaurantID)
}

// ListAddresses returns the customer's saved addresses
func (s *CatalogService) ListAddresses(ctx context.Context) ([]models.Address, error) {
	return s.addresses.GetAll(ctx)
}
