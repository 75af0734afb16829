// Package form is the customer create/update form: it holds the record being
// edited, gates submission on validation and reports where to navigate next.
package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/crudio/crudio/internal/sales/customers"
	"github.com/crudio/crudio/internal/sales/lineitem"
	"github.com/crudio/crudio/internal/sales/validation"
)

// Status is the submission state of a form.
type Status int

const (
	Idle Status = iota
	Submitting
	Navigated
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Navigated:
		return "navigated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Navigation tells the caller where to go once the form is done.
type Navigation struct {
	Path    string
	Success bool
}

// ListPath is where every form navigates on completion.
const ListPath = "/"

// Scalar field names as posted by the browser.
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldEmail       = "email"
	FieldAddress     = "address"
	FieldPhoneNumber = "phoneNumber"
)

// Gateway is the part of the customer API the form needs.
type Gateway interface {
	GetCustomer(ctx context.Context, id int64) (*customers.Customer, error)
	CreateCustomer(ctx context.Context, c customers.Customer) error
	UpdateCustomer(ctx context.Context, id int64, c customers.Customer) error
}

// Config collects controller dependencies.
type Config struct {
	Gateway Gateway
	Engine  *validation.Engine
	Logger  *slog.Logger
}

// Controller owns one form instance. It is safe for concurrent use; network
// calls run without holding the lock.
type Controller struct {
	gateway Gateway
	engine  *validation.Engine
	logger  *slog.Logger

	mu       sync.Mutex
	id       int64
	status   Status
	nav      *Navigation
	customer customers.Customer
	rows     lineitem.List
	errs     validation.ErrorMap
	failure  ErrorKind
}

// NewCreate returns an empty form for a new customer.
func NewCreate(cfg Config) *Controller {
	return newController(cfg, 0)
}

// NewUpdate returns a form that saves over customer id. The record starts
// empty; call Hydrate to load it.
func NewUpdate(cfg Config, id int64) *Controller {
	return newController(cfg, id)
}

func newController(cfg Config, id int64) *Controller {
	engine := cfg.Engine
	if engine == nil {
		engine = validation.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gateway:  cfg.Gateway,
		engine:   engine,
		logger:   logger,
		id:       id,
		customer: customers.Customer{CustomerID: id},
		rows:     lineitem.FromItems(nil),
		errs:     validation.ErrorMap{},
	}
}

// Hydrate loads the customer being updated. A failed fetch keeps the empty
// defaults; it is logged and returned but never retried.
func (c *Controller) Hydrate(ctx context.Context) error {
	c.mu.Lock()
	id := c.id
	c.mu.Unlock()
	if id == 0 {
		return nil
	}
	found, err := c.gateway.GetCustomer(ctx, id)
	if err != nil {
		c.logger.Warn("hydrate customer", slog.Any("error", err), slog.Int64("customer_id", id))
		return fmt.Errorf("hydrate customer %d: %w", id, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Idle {
		return nil
	}
	c.customer = *found
	c.customer.CustomerID = id
	c.rows = lineitem.FromItems(found.Sales)
	c.customer.Sales = nil
	return nil
}

// HandleChange sets a scalar field of the customer.
func (c *Controller) HandleChange(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	switch field {
	case FieldFirstName:
		c.customer.FirstName = value
	case FieldLastName:
		c.customer.LastName = value
	case FieldEmail:
		c.customer.Email = value
	case FieldAddress:
		c.customer.Address = value
	case FieldPhoneNumber:
		c.customer.PhoneNumber = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ChangeSale applies a raw input to one sale row.
func (c *Controller) ChangeSale(index int, field, raw string) error {
	f, err := lineitem.ParseField(field)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownField, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	rows, err := c.rows.Change(index, f, raw)
	if err != nil {
		return err
	}
	c.rows = rows
	return nil
}

// SetRows replaces the sale rows, as when a posted form is decoded.
func (c *Controller) SetRows(rows lineitem.List) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	if len(rows) == 0 {
		rows = lineitem.FromItems(nil)
	}
	c.rows = rows
	return nil
}

// SetErrors replaces the error map, as when a posted form carries the
// errors shown on the previous render.
func (c *Controller) SetErrors(errs validation.ErrorMap) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = errs.Clone()
}

// AddSale appends an empty sale row.
func (c *Controller) AddSale() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	c.rows = c.rows.Add()
	return nil
}

// RemoveSale deletes row index and renumbers the errors of later rows.
func (c *Controller) RemoveSale(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	rows, err := c.rows.Remove(index)
	if err != nil {
		return err
	}
	c.rows = rows
	c.errs = c.errs.RemoveRow(index)
	return nil
}

// Submit validates the record and saves it. Validation failures return
// ErrInvalid without any network call; API failures return ErrNetwork and
// leave the form Idle for a retry.
func (c *Controller) Submit(ctx context.Context) (Navigation, error) {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return Navigation{}, err
	}
	rec := c.recordLocked()
	if errs := c.engine.Validate(rec); !errs.Empty() {
		c.errs = errs
		c.failure = ErrorKindValidation
		c.mu.Unlock()
		return Navigation{}, ErrInvalid
	}
	payload := c.payloadLocked()
	id := c.id
	c.status = Submitting
	c.failure = ErrorKindNone
	c.mu.Unlock()

	var err error
	if payload.Persisted() {
		err = c.gateway.UpdateCustomer(ctx, id, payload)
	} else {
		err = c.gateway.CreateCustomer(ctx, payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = Idle
		c.failure = ErrorKindNetwork
		c.logger.Error("submit customer", slog.Any("error", err), slog.Int64("customer_id", id))
		return Navigation{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	c.errs = validation.ErrorMap{}
	c.status = Navigated
	c.nav = &Navigation{Path: ListPath, Success: true}
	return *c.nav, nil
}

// Cancel discards every edit and leaves the form.
func (c *Controller) Cancel() Navigation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nav != nil {
		return *c.nav
	}
	c.customer = customers.Customer{CustomerID: c.id}
	c.rows = lineitem.FromItems(nil)
	c.errs = validation.ErrorMap{}
	c.status = Navigated
	c.nav = &Navigation{Path: ListPath}
	return *c.nav
}

func (c *Controller) editableLocked() error {
	switch c.status {
	case Submitting:
		return ErrSubmitInFlight
	case Navigated:
		return ErrNavigated
	}
	return nil
}

func (c *Controller) recordLocked() validation.Record {
	return validation.Record{
		FirstName:   c.customer.FirstName,
		LastName:    c.customer.LastName,
		Email:       c.customer.Email,
		Address:     c.customer.Address,
		PhoneNumber: c.customer.PhoneNumber,
		Sales:       c.rows.Rules(),
	}
}

func (c *Controller) payloadLocked() customers.Customer {
	out := c.customer
	out.CustomerID = c.id
	out.FirstName = strings.TrimSpace(out.FirstName)
	out.LastName = strings.TrimSpace(out.LastName)
	out.Email = strings.TrimSpace(out.Email)
	out.Address = strings.TrimSpace(out.Address)
	out.PhoneNumber = strings.TrimSpace(out.PhoneNumber)
	out.Sales = c.rows.Items()
	return out
}

// Status returns the submission state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Navigation returns where to go, or nil while the form is open.
func (c *Controller) Navigation() *Navigation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nav == nil {
		return nil
	}
	nav := *c.nav
	return &nav
}

// CustomerID is the id being updated, zero for a new customer.
func (c *Controller) CustomerID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Customer returns the record as it would be submitted.
func (c *Controller) Customer() customers.Customer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.customer
	out.Sales = c.rows.Items()
	return out
}

// Rows returns the sale rows.
func (c *Controller) Rows() lineitem.List {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(lineitem.List(nil), c.rows...)
}

// Errors returns the current validation errors.
func (c *Controller) Errors() validation.ErrorMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.Clone()
}

// Failure reports how the last submit failed.
func (c *Controller) Failure() ErrorKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}
