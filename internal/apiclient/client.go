// Package apiclient talks to the food delivery backend over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:8080/api/v1"

// ErrNotFound matches any *Error with status 404
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response from the backend
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is a backend client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for baseURL authenticating with apiKey
func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRestaurants returns every restaurant in the catalog
func (c *Client) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := c.do(ctx, http.MethodGet, "/customer/restaurants", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRestaurant returns a single restaurant
func (c *Client) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	var out models.Restaurant
	if err := c.do(ctx, http.MethodGet, "/customer/restaurants/"+idPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMenu returns the products offered by a restaurant
func (c *Client) GetMenu(ctx context.Context, restaurantID int64) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/customer/restaurants/"+idPath(restaurantID)+"/menu", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAddresses returns the customer's saved delivery addresses
func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var out []models.Address
	if err := c.do(ctx, http.MethodGet, "/customer/addresses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder places a new order
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/customer/orders", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrder fetches the current state of an order
func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodGet, "/customer/orders/"+idPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the customer's orders, newest first
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/customer/orders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrder cancels an order that has not been picked up yet
func (c *Client) CancelOrder(ctx context.Context, id int64, reason string) (*models.Order, error) {
	q := url.Values{}
	if reason != "" {
		q.Set("reason", reason)
	}
	var out models.Order
	if err := c.do(ctx, http.MethodPut, "/customer/orders/"+idPath(id)+"/cancel", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reorder places a copy of a previous order. A zero addressID reuses the
// original delivery address.
func (c *Client) Reorder(ctx context.Context, id, addressID int64) (*models.Order, error) {
	q := url.Values{}
	if addressID > 0 {
		q.Set("addressId", idPath(addressID))
	}
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/customer/orders/"+idPath(id)+"/reorder", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus moves an order to status on behalf of the restaurant
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	body := models.UpdateStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPut, "/restaurant/orders/"+idPath(id)+"/status", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api_key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

func idPath(id int64) string {
	return strconv.FormatInt(id, 10)
}
