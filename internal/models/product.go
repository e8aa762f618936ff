package models

import "github.com/shopspring/decimal"

// Product represents a menu item offered by a restaurant.
// Price is kept as a decimal so cart and order totals are exact.
type Product struct {
	ID              int64           `json:"id" yaml:"id"`
	RestaurantID    int64           `json:"restaurantId" yaml:"restaurantId"`
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description,omitempty" yaml:"description"`
	Price           decimal.Decimal `json:"price" yaml:"price"`
	Category        string          `json:"category" yaml:"category"`
	ImageURL        string          `json:"imageUrl,omitempty" yaml:"imageUrl"`
	IsVeg           bool            `json:"isVeg,omitempty" yaml:"isVeg"`
	IsAvailable     bool            `json:"isAvailable" yaml:"isAvailable"`
	PrepTimeMinutes int             `json:"prepTimeMinutes,omitempty" yaml:"prepTimeMinutes"`
}

// Restaurant represents a restaurant listed in the catalog
type Restaurant struct {
	ID                int64   `json:"id" yaml:"id"`
	Name              string  `json:"name" yaml:"name"`
	Cuisine           string  `json:"cuisine" yaml:"cuisine"`
	Rating            float64 `json:"rating" yaml:"rating"`
	DeliveryTime      string  `json:"deliveryTime" yaml:"deliveryTime"`
	ImageURL          string  `json:"imageUrl,omitempty" yaml:"imageUrl"`
	IsAcceptingOrders bool    `json:"isAcceptingOrders" yaml:"isAcceptingOrders"`
	Latitude          float64 `json:"latitude" yaml:"latitude"`
	Longitude         float64 `json:"longitude" yaml:"longitude"`
}
