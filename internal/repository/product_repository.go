package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrAddressNotFound    = errors.New("address not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]models.Product, error)
}

// RestaurantRepository defines the interface for restaurant data access
type RestaurantRepository interface {
	GetAll(ctx context.Context) ([]models.Restaurant, error)
	GetByID(ctx context.Context, id int64) (*models.Restaurant, error)
}

// AddressRepository defines the interface for delivery address data access
type AddressRepository interface {
	GetAll(ctx context.Context) ([]models.Address, error)
	GetByID(ctx context.Context, id int64) (*models.Address, error)
}

// InMemoryCatalogRepository serves restaurants, products and addresses from
// a Catalog. It is read-only after construction.
type InMemoryCatalogRepository struct {
	restaurants map[int64]models.Restaurant
	products    map[int64]models.Product
	addresses   map[int64]models.Address
}

// NewInMemoryCatalogRepository indexes the catalog by id
func NewInMemoryCatalogRepository(c *Catalog) *InMemoryCatalogRepository {
	r := &InMemoryCatalogRepository{
		restaurants: make(map[int64]models.Restaurant, len(c.Restaurants)),
		products:    make(map[int64]models.Product, len(c.Products)),
		addresses:   make(map[int64]models.Address, len(c.Addresses)),
	}
	for _, rest := range c.Restaurants {
		r.restaurants[rest.ID] = rest
	}
	for _, p := range c.Products {
		r.products[p.ID] = p
	}
	for _, a := range c.Addresses {
		r.addresses[a.ID] = a
	}
	return r
}

// Products returns the product view of the catalog
func (r *InMemoryCatalogRepository) Products() ProductRepository { return productView{r} }

// Restaurants returns the restaurant view of the catalog
func (r *InMemoryCatalogRepository) Restaurants() RestaurantRepository { return restaurantView{r} }

// Addresses returns the address view of the catalog
func (r *InMemoryCatalogRepository) Addresses() AddressRepository { return addressView{r} }

type productView struct{ r *InMemoryCatalogRepository }

func (v productView) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product, exists := v.r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (v productView) ListByRestaurant(ctx context.Context, restaurantID int64) ([]models.Product, error) {
	if _, ok := v.r.restaurants[restaurantID]; !ok {
		return nil, ErrRestaurantNotFound
	}
	products := make([]models.Product, 0)
	for _, p := range v.r.products {
		if p.RestaurantID == restaurantID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

type restaurantView struct{ r *InMemoryCatalogRepository }

func (v restaurantView) GetAll(ctx context.Context) ([]models.Restaurant, error) {
	restaurants := make([]models.Restaurant, 0, len(v.r.restaurants))
	for _, rest := range v.r.restaurants {
		restaurants = append(restaurants, rest)
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].ID < restaurants[j].ID })
	return restaurants, nil
}

func (v restaurantView) GetByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	rest, exists := v.r.restaurants[id]
	if !exists {
		return nil, ErrRestaurantNotFound
	}
	return &rest, nil
}

type addressView struct{ r *InMemoryCatalogRepository }

func (v addressView) GetAll(ctx context.Context) ([]models.Address, error) {
	addresses := make([]models.Address, 0, len(v.r.addresses))
	for _, a := range v.r.addresses {
		addresses = append(addresses, a)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses, nil
}

func (v addressView) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	a, exists := v.r.addresses[id]
	if !exists {
		return nil, ErrAddressNotFound
	}
	return &a, nil
}
