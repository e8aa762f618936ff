package cart

import (
	"errors"
	"fmt"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidArgument is returned for caller contract violations such as a
	// non-positive quantity passed to AddItem.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptState is returned by Load when persisted data cannot be parsed
	// or breaks the cart invariants.
	ErrCorruptState = errors.New("corrupt cart state")
)

// LineItem is one product with its quantity and an optional note.
// Product is a snapshot taken when the item was first added; its price is
// what Total uses until the item leaves the cart.
type LineItem struct {
	Product         models.Product `json:"product"`
	Quantity        int            `json:"quantity"`
	SpecialRequests string         `json:"specialRequests,omitempty"`
}

// Subtotal is unit price times quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return pricing.LineTotal(li.Product.Price, li.Quantity)
}

// State is the cart contents: line items in insertion order and the
// restaurant they all belong to. RestaurantID is nil exactly when Items is
// empty.
type State struct {
	Items        []LineItem
	RestaurantID *int64
}

// IsEmpty reports whether the cart holds no items
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Total is the sum of unit price times quantity over all items
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities over all items
func (s State) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

func (s State) indexOf(productID int64) int {
	for i, item := range s.Items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := State{}
	if len(s.Items) > 0 {
		out.Items = make([]LineItem, len(s.Items))
		copy(out.Items, s.Items)
	}
	if s.RestaurantID != nil {
		id := *s.RestaurantID
		out.RestaurantID = &id
	}
	return out
}

// validate checks the single-restaurant rule, positive quantities and
// product id uniqueness.
func (s State) validate() error {
	if len(s.Items) == 0 {
		return nil
	}
	if s.RestaurantID == nil {
		return fmt.Errorf("%w: %d items without a restaurant", ErrCorruptState, len(s.Items))
	}

	seen := make(map[int64]bool, len(s.Items))
	for _, item := range s.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: product %d has quantity %d", ErrCorruptState, item.Product.ID, item.Quantity)
		}
		if item.Product.RestaurantID != *s.RestaurantID {
			return fmt.Errorf("%w: product %d belongs to restaurant %d, cart is for %d",
				ErrCorruptState, item.Product.ID, item.Product.RestaurantID, *s.RestaurantID)
		}
		if seen[item.Product.ID] {
			return fmt.Errorf("%w: duplicate product %d", ErrCorruptState, item.Product.ID)
		}
		seen[item.Product.ID] = true
	}
	return nil
}

func restaurantPtr(id int64) *int64 {
	return &id
}
