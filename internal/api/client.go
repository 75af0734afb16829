// Package api is the HTTP client for the customer and product REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/crudio/crudio/internal/platform/httpx"
	"github.com/crudio/crudio/internal/sales/customers"
)

// Recorder receives one observation per API call.
type Recorder interface {
	ObserveAPICall(operation, outcome string, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained calls per second; zero disables limiting.
	RateLimit  float64
	Burst      int
	HTTPClient *http.Client
	Metrics    Recorder
}

// Client talks to the customer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    Recorder
}

// NewClient constructs a new client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		metrics:    opts.Metrics,
	}
}

// ListCustomers fetches one page of customers matching search.
func (c *Client) ListCustomers(ctx context.Context, page int, search string) (*customers.ListPage, error) {
	params := url.Values{}
	params.Set("currentPage", strconv.Itoa(page))
	params.Set("searchText", search)
	var out customers.ListPage
	if err := c.do(ctx, "list_customers", http.MethodGet, "/api/customers?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCustomer fetches one customer with its sales.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*customers.Customer, error) {
	var out customers.Customer
	if err := c.do(ctx, "get_customer", http.MethodGet, customerPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCustomer posts a new customer. Any customerId on the record is dropped.
func (c *Client) CreateCustomer(ctx context.Context, customer customers.Customer) error {
	customer.CustomerID = 0
	return c.do(ctx, "create_customer", http.MethodPost, "/api/customer", customer, nil)
}

// UpdateCustomer replaces customer id.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, customer customers.Customer) error {
	return c.do(ctx, "update_customer", http.MethodPut, customerPath(id), customer, nil)
}

// DeleteCustomer removes customer id.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_customer", http.MethodDelete, customerPath(id), nil, nil)
}

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]customers.Product, error) {
	var out []customers.Product
	if err := c.do(ctx, "list_products", http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func customerPath(id int64) string {
	return "/api/customers/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		if c.metrics != nil {
			c.metrics.ObserveAPICall(op, outcome, time.Since(start))
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &transportError{op: op, err: err}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s: encode: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Op: op, Status: resp.StatusCode, Problem: httpx.ReadProblem(resp)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &transportError{op: op, err: errors.New("empty response body")}
		}
		return &transportError{op: op, err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
