package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Keys under which the cart is persisted.
const (
	ItemsKey      = "cart"
	RestaurantKey = "cartRestaurantId"
)

// Storage is a string key-value store that survives the session, such as a
// local file or a per-session database namespace.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Save writes st to storage: the items as a JSON array under ItemsKey and the
// restaurant id as a JSON number under RestaurantKey. RestaurantKey is
// removed when no restaurant is set.
func Save(storage Storage, st State) error {
	items := st.Items
	if items == nil {
		items = []LineItem{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	var errs []error
	if err := storage.Set(ItemsKey, string(raw)); err != nil {
		errs = append(errs, fmt.Errorf("write %s: %w", ItemsKey, err))
	}

	if st.RestaurantID == nil {
		if err := storage.Remove(RestaurantKey); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", RestaurantKey, err))
		}
	} else if err := storage.Set(RestaurantKey, strconv.FormatInt(*st.RestaurantID, 10)); err != nil {
		errs = append(errs, fmt.Errorf("write %s: %w", RestaurantKey, err))
	}

	return errors.Join(errs...)
}

// Load reads a state written by Save. Missing keys yield the empty state.
// Unparseable data or data that breaks the cart invariants yields
// ErrCorruptState.
func Load(storage Storage) (State, error) {
	var st State

	rawItems, ok, err := storage.Get(ItemsKey)
	if err != nil {
		return State{}, fmt.Errorf("read %s: %w", ItemsKey, err)
	}
	if ok && rawItems != "" {
		if err := json.Unmarshal([]byte(rawItems), &st.Items); err != nil {
			return State{}, fmt.Errorf("%w: decode items: %v", ErrCorruptState, err)
		}
	}

	rawRestaurant, ok, err := storage.Get(RestaurantKey)
	if err != nil {
		return State{}, fmt.Errorf("read %s: %w", RestaurantKey, err)
	}
	if ok && rawRestaurant != "" {
		var id int64
		if err := json.Unmarshal([]byte(rawRestaurant), &id); err != nil {
			return State{}, fmt.Errorf("%w: decode restaurant id: %v", ErrCorruptState, err)
		}
		st.RestaurantID = &id
	}

	// An empty cart never keeps a restaurant lock.
	if len(st.Items) == 0 {
		return State{}, nil
	}

	if err := st.validate(); err != nil {
		return State{}, err
	}
	return st, nil
}
