// Package list drives the paginated, searchable customer list: it refetches
// on page, search and refresh changes, runs the delete confirmation and owns
// the success banner.
package list

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crudio/crudio/internal/sales/customers"
	"github.com/crudio/crudio/internal/shared"
	"github.com/crudio/crudio/internal/state"
)

// ErrNoDeleteTarget is returned by ConfirmDelete when no prompt is open.
var ErrNoDeleteTarget = errors.New("list: no delete pending")

// User-facing messages stored in the state error.
const (
	msgLoadCustomers = "Could not load customers. Try again."
	msgLoadProducts  = "Could not load products."
)

// API is the part of the customer API the list needs.
type API interface {
	ListCustomers(ctx context.Context, page int, search string) (*customers.ListPage, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// Products supplies the product catalog.
type Products interface {
	Products(ctx context.Context) ([]customers.Product, error)
}

// StaleRecorder counts dropped list responses.
type StaleRecorder interface {
	StaleResponse()
}

// Config collects controller dependencies.
type Config struct {
	Store     *state.Store
	API       API
	Products  Products
	Logger    *slog.Logger
	BannerTTL time.Duration
	AfterFunc AfterFunc
	Metrics   StaleRecorder
}

// Controller is the customer list for one session.
type Controller struct {
	store    *state.Store
	api      API
	products Products
	logger   *slog.Logger
	metrics  StaleRecorder
	banner   *Banner

	seq         atomic.Uint64
	unsubscribe func()

	// applyMu makes the token check and the apply of a response one step.
	applyMu sync.Mutex
	// fresh is set when a response was applied since the last Load.
	fresh atomic.Bool
	// onApply runs between the token check and the apply; tests only.
	onApply func(token uint64)

	mu           sync.Mutex
	deleteTarget int64
}

// NewController wires the list to its store. The store subscription lives
// until Close.
func NewController(cfg Config) *Controller {
	store := cfg.Store
	if store == nil {
		store = state.NewStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		store:    store,
		api:      cfg.API,
		products: cfg.Products,
		logger:   logger,
		metrics:  cfg.Metrics,
		banner:   NewBanner(cfg.BannerTTL, cfg.AfterFunc),
	}
	c.unsubscribe = store.Subscribe(c.onChange)
	return c
}

// Store exposes the state container.
func (c *Controller) Store() *state.Store { return c.store }

// Banner exposes the success banner.
func (c *Controller) Banner() *Banner { return c.banner }

func (c *Controller) onChange(ctx context.Context, prev, next state.State) {
	raised := next.RefreshFlag && !prev.RefreshFlag
	if next.CurrentPage == prev.CurrentPage && next.SearchText == prev.SearchText && !raised {
		return
	}
	c.fetch(ctx, next.CurrentPage, next.SearchText)
	if raised {
		c.store.Dispatch(ctx, state.RefreshCustomers(false))
	}
}

func (c *Controller) fetch(ctx context.Context, page int, search string) {
	token := c.seq.Add(1)
	c.store.Dispatch(ctx, state.FetchStart())
	result, err := c.api.ListCustomers(ctx, page, search)

	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	if token != c.seq.Load() {
		c.logger.Debug("dropping stale customer list response",
			slog.Uint64("token", token), slog.Int("page", page), slog.String("search", search))
		if c.metrics != nil {
			c.metrics.StaleResponse()
		}
		return
	}
	if c.onApply != nil {
		c.onApply(token)
	}
	defer c.fresh.Store(true)
	if err != nil {
		c.logger.Error("list customers", slog.Any("error", err), slog.Int("page", page))
		c.store.Dispatch(ctx, state.FetchError(msgLoadCustomers))
		return
	}
	c.store.Dispatch(ctx, state.FetchCustomersSuccess(result))
}

// Load renders the list at page (values below 1 keep the current page). A
// response applied since the previous Load, as after a search, refresh or
// delete, is rendered as is. The catalog is loaded on first use.
func (c *Controller) Load(ctx context.Context, page int) {
	c.EnsureProducts(ctx)
	defer c.fresh.Store(false)
	current := c.store.State().CurrentPage
	if page >= 1 && page != current {
		c.store.Dispatch(ctx, state.SetCurrentPage(page))
		return
	}
	if c.fresh.Load() {
		return
	}
	c.fetch(ctx, current, c.store.State().SearchText)
}

// EnsureProducts loads the catalog into the store once per session and
// returns it. A failed load is logged and yields nil.
func (c *Controller) EnsureProducts(ctx context.Context) []customers.Product {
	if loaded := c.store.State().Products; loaded != nil || c.products == nil {
		return loaded
	}
	products, err := c.products.Products(ctx)
	if err != nil {
		c.logger.Error("load products", slog.Any("error", err))
		c.store.Dispatch(ctx, state.FetchError(msgLoadProducts))
		return nil
	}
	if products == nil {
		products = []customers.Product{}
	}
	c.store.Dispatch(ctx, state.FetchProductsSuccess(products))
	return products
}

// SetPage moves to page n.
func (c *Controller) SetPage(ctx context.Context, n int) {
	c.store.Dispatch(ctx, state.SetCurrentPage(n))
}

// SetSearchText starts a new search at page 1. It always results in exactly
// one fetch, even when neither the text nor the page changes.
func (c *Controller) SetSearchText(ctx context.Context, text string) {
	s := c.store.State()
	if s.SearchText == text && s.CurrentPage == 1 {
		c.Refresh(ctx)
		return
	}
	c.store.Dispatch(ctx, state.SetSearchText(text))
}

// Refresh reloads the current page.
func (c *Controller) Refresh(ctx context.Context) {
	c.store.Dispatch(ctx, state.RefreshCustomers(true))
}

// RequestDelete opens the confirmation prompt for id.
func (c *Controller) RequestDelete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteTarget = id
}

// DeleteTarget returns the id held by the open prompt.
func (c *Controller) DeleteTarget() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteTarget, c.deleteTarget != 0
}

// CancelDelete closes the prompt.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteTarget = 0
}

// ConfirmDelete deletes the held customer. On failure the prompt stays open
// and nothing is refreshed.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	id, ok := c.DeleteTarget()
	if !ok {
		return ErrNoDeleteTarget
	}
	if err := c.api.DeleteCustomer(ctx, id); err != nil {
		c.logger.Error("delete customer", slog.Any("error", err), slog.Int64("customer_id", id))
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	c.mu.Lock()
	if c.deleteTarget == id {
		c.deleteTarget = 0
	}
	c.mu.Unlock()
	c.banner.Show()
	c.Refresh(ctx)
	return nil
}

// ShowBanner raises the success banner.
func (c *Controller) ShowBanner() { c.banner.Show() }

// DismissBanner hides the banner and stops its timer.
func (c *Controller) DismissBanner() { c.banner.Dismiss() }

// Pages returns one control per page.
func (c *Controller) Pages() []shared.PageLink {
	s := c.store.State()
	total := 0
	if s.Customers != nil {
		total = s.Customers.Pagination.TotalPages
	}
	return shared.NewPagination(s.CurrentPage, total).Links()
}

// View is the render model of the list page.
type View struct {
	Customers    []customers.Customer
	Pagination   shared.Pagination
	Pages        []shared.PageLink
	SearchText   string
	Loading      bool
	Error        string
	DeleteTarget int64
	Banner       bool
}

// View snapshots the list for rendering.
func (c *Controller) View() View {
	s := c.store.State()
	v := View{
		SearchText: s.SearchText,
		Loading:    s.Loading,
		Error:      s.Error,
		Banner:     c.banner.Visible(),
	}
	total := 0
	if s.Customers != nil {
		v.Customers = s.Customers.Results
		total = s.Customers.Pagination.TotalPages
	}
	v.Pagination = shared.NewPagination(s.CurrentPage, total)
	v.Pages = v.Pagination.Links()
	v.DeleteTarget, _ = c.DeleteTarget()
	return v
}

// Close detaches from the store and stops the banner timer.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.banner.Close()
}
