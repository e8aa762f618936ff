package models

// Address is a saved customer delivery address
type Address struct {
	ID           int64   `json:"id" yaml:"id"`
	Label        string  `json:"label" yaml:"label"`
	AddressLine1 string  `json:"addressLine1" yaml:"addressLine1"`
	AddressLine2 string  `json:"addressLine2,omitempty" yaml:"addressLine2"`
	City         string  `json:"city" yaml:"city"`
	State        string  `json:"state" yaml:"state"`
	PostalCode   string  `json:"postalCode" yaml:"postalCode"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	IsDefault    bool    `json:"isDefault" yaml:"isDefault"`
}
