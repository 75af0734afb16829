package form

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crudio/crudio/internal/api"
	"github.com/crudio/crudio/internal/sales/customers"
	"github.com/crudio/crudio/internal/sales/lineitem"
	"github.com/crudio/crudio/internal/sales/validation"
)

type update struct {
	id       int64
	customer customers.Customer
}

type fakeGateway struct {
	mu      sync.Mutex
	created []customers.Customer
	updated []update
	fetched []int64
	found   *customers.Customer
	getErr  error
	saveErr error
	block   chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) GetCustomer(ctx context.Context, id int64) (*customers.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetched = append(g.fetched, id)
	if g.getErr != nil {
		return nil, g.getErr
	}
	c := *g.found
	return &c, nil
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, c customers.Customer) error {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, c)
	return g.saveErr
}

func (g *fakeGateway) UpdateCustomer(ctx context.Context, id int64, c customers.Customer) error {
	g.wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updated = append(g.updated, update{id: id, customer: c})
	return g.saveErr
}

func (g *fakeGateway) wait() {
	if g.entered != nil {
		close(g.entered)
	}
	if g.block != nil {
		<-g.block
	}
}

func newConfig(g Gateway) Config {
	return Config{
		Gateway: g,
		Engine:  validation.New(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func fill(t *testing.T, c *Controller, values map[string]string) {
	t.Helper()
	for field, value := range values {
		require.NoError(t, c.HandleChange(field, value))
	}
}

func philBoyce() map[string]string {
	return map[string]string{
		FieldFirstName:   "Phil",
		FieldLastName:    "Boyce",
		FieldEmail:       "phil.boyce@example.com",
		FieldAddress:     "123 Main St",
		FieldPhoneNumber: "555-1234",
	}
}

func TestSubmitEmptyFormReportsRequiredFields(t *testing.T) {
	g := &fakeGateway{}
	c := NewCreate(newConfig(g))
	fill(t, c, map[string]string{FieldFirstName: "", FieldLastName: "", FieldEmail: "", FieldAddress: "", FieldPhoneNumber: ""})

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, ErrorKindValidation, KindOf(err))

	errs := c.Errors()
	assert.Equal(t, "First name is required", errs.Get("firstName"))
	assert.Equal(t, "Last name is required", errs.Get("lastName"))
	assert.Equal(t, "Email is required", errs.Get("email"))
	assert.Equal(t, "Address is required", errs.Get("address"))
	assert.Equal(t, "Phone number is required", errs.Get("phoneNumber"))
	assert.Equal(t, Idle, c.Status())
	assert.Empty(t, g.created)
	assert.Nil(t, c.Navigation())
}

func TestSubmitValidCustomerCreates(t *testing.T) {
	g := &fakeGateway{}
	c := NewCreate(newConfig(g))
	fill(t, c, philBoyce())
	require.NoError(t, c.ChangeSale(0, "productId", "1"))
	require.NoError(t, c.ChangeSale(0, "quantity", "1"))
	require.NoError(t, c.ChangeSale(0, "unitPrice", "1"))

	nav, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Navigation{Path: "/", Success: true}, nav)
	assert.Equal(t, Navigated, c.Status())
	require.Len(t, g.created, 1)
	assert.Equal(t, customers.Customer{
		FirstName:   "Phil",
		LastName:    "Boyce",
		Email:       "phil.boyce@example.com",
		Address:     "123 Main St",
		PhoneNumber: "555-1234",
		Sales:       []customers.SaleLineItem{{ProductID: 1, Quantity: 1, UnitPrice: 1, TotalPrice: 1}},
	}, g.created[0])
	assert.Empty(t, g.updated)
}

func TestSubmitZeroQuantityBlocks(t *testing.T) {
	g := &fakeGateway{}
	c := NewCreate(newConfig(g))
	fill(t, c, philBoyce())
	require.NoError(t, c.ChangeSale(0, "productId", "1"))
	require.NoError(t, c.ChangeSale(0, "quantity", "0"))
	require.NoError(t, c.ChangeSale(0, "unitPrice", "10"))

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "Quantity must be greater than zero", c.Errors().Get("sales[0].quantity"))
	assert.Empty(t, g.created)
}

func TestSubmitDefaultRowNeedsProduct(t *testing.T) {
	g := &fakeGateway{}
	c := NewCreate(newConfig(g))
	fill(t, c, philBoyce())

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)
	errs := c.Errors()
	assert.Equal(t, "Product should be selected.", errs.Get("sales[0].productId"))
	assert.Equal(t, "Quantity must be greater than zero", errs.Get("sales[0].quantity"))
	assert.Equal(t, "Unit price must be greater than zero", errs.Get("sales[0].unitPrice"))
}

func TestSubmitNetworkFailureReturnsToIdle(t *testing.T) {
	g := &fakeGateway{saveErr: &api.StatusError{Op: "create_customer", Status: 500}}
	c := NewCreate(newConfig(g))
	fill(t, c, philBoyce())
	for field, v := range map[string]string{"productId": "1", "quantity": "2", "unitPrice": "3"} {
		require.NoError(t, c.ChangeSale(0, field, v))
	}
	c.SetErrors(validation.ErrorMap{"email": "Invalid email"})

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, api.ErrRequest)
	assert.Equal(t, ErrorKindNetwork, KindOf(err))
	assert.Equal(t, Idle, c.Status())
	assert.Equal(t, ErrorKindNetwork, c.Failure())
	assert.Equal(t, validation.ErrorMap{"email": "Invalid email"}, c.Errors(), "network failures leave field errors alone")

	g.saveErr = nil
	nav, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, nav.Success)
	assert.Len(t, g.created, 2)
	assert.True(t, c.Errors().Empty())
}

func TestSubmitWhileInFlight(t *testing.T) {
	g := &fakeGateway{block: make(chan struct{}), entered: make(chan struct{})}
	c := NewCreate(newConfig(g))
	fill(t, c, philBoyce())
	for field, v := range map[string]string{"productId": "1", "quantity": "1", "unitPrice": "1"} {
		require.NoError(t, c.ChangeSale(0, field, v))
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-g.entered

	assert.Equal(t, Submitting, c.Status())
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, c.AddSale(), ErrSubmitInFlight)
	assert.True(t, c.View(nil).Rows[0].Disabled)

	close(g.block)
	require.NoError(t, <-done)

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNavigated)
	assert.Len(t, g.created, 1)
}

func TestCancelDiscardsWithoutCalls(t *testing.T) {
	g := &fakeGateway{}
	c := NewCreate(newConfig(g))
	fill(t, c, philBoyce())
	require.NoError(t, c.AddSale())

	nav := c.Cancel()

	assert.Equal(t, Navigation{Path: "/"}, nav)
	assert.Equal(t, Navigated, c.Status())
	assert.Equal(t, "", c.Customer().FirstName)
	assert.Len(t, c.Rows(), 1)
	assert.Empty(t, g.created)
	assert.ErrorIs(t, c.HandleChange(FieldFirstName, "x"), ErrNavigated)
}

func TestHandleChangeUnknownField(t *testing.T) {
	c := NewCreate(newConfig(&fakeGateway{}))
	assert.ErrorIs(t, c.HandleChange("nickname", "x"), ErrUnknownField)
	assert.ErrorIs(t, c.ChangeSale(0, "discount", "1"), ErrUnknownField)
	assert.ErrorIs(t, c.ChangeSale(4, "quantity", "1"), lineitem.ErrRowIndex)
}

func TestChangeSaleRecomputesOnlyThatRow(t *testing.T) {
	c := NewCreate(newConfig(&fakeGateway{}))
	require.NoError(t, c.AddSale())
	require.NoError(t, c.ChangeSale(1, "quantity", "2"))
	require.NoError(t, c.ChangeSale(1, "unitPrice", "2.5"))
	require.NoError(t, c.ChangeSale(0, "unitPrice", "9"))
	require.NoError(t, c.ChangeSale(1, "totalPrice", "999"))

	sales := c.Customer().Sales
	require.Len(t, sales, 2)
	assert.Equal(t, 0.0, sales[0].TotalPrice)
	assert.Equal(t, 5.0, sales[1].TotalPrice)
}

func TestAddAndRemoveSales(t *testing.T) {
	c := NewCreate(newConfig(&fakeGateway{}))
	assert.ErrorIs(t, c.RemoveSale(0), lineitem.ErrLastRow)

	require.NoError(t, c.AddSale())
	require.NoError(t, c.AddSale())
	rows := c.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, int64(0), rows[2].Item.ProductID)

	c.SetErrors(validation.ErrorMap{
		"sales[0].quantity":  "Quantity is required",
		"sales[2].unitPrice": "Unit price is required",
	})
	require.NoError(t, c.RemoveSale(0))

	after := c.Rows()
	require.Len(t, after, 2)
	assert.Equal(t, rows[1].Key, after[0].Key)
	assert.Equal(t, rows[2].Key, after[1].Key)
	assert.Equal(t, validation.ErrorMap{"sales[1].unitPrice": "Unit price is required"}, c.Errors())
}

func TestUpdateFlowHydratesAndUpdates(t *testing.T) {
	g := &fakeGateway{found: &customers.Customer{
		CustomerID:  12,
		FirstName:   "Ann",
		LastName:    "Lee",
		Email:       "ann@example.com",
		Address:     "1 Side St",
		PhoneNumber: "555-0000",
		Sales:       []customers.SaleLineItem{{SaleID: 3, ProductID: 2, Quantity: 2, UnitPrice: 4, TotalPrice: 8, ProductName: "Ink"}},
	}}
	c := NewUpdate(newConfig(g), 12)
	require.NoError(t, c.Hydrate(context.Background()))
	assert.Equal(t, []int64{12}, g.fetched)
	assert.Equal(t, "Ann", c.Customer().FirstName)

	require.NoError(t, c.ChangeSale(0, "quantity", "3"))
	nav, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, nav.Success)

	require.Len(t, g.updated, 1)
	assert.Equal(t, int64(12), g.updated[0].id)
	sale := g.updated[0].customer.Sales[0]
	assert.Equal(t, int64(3), sale.SaleID)
	assert.Equal(t, 12.0, sale.TotalPrice)
	assert.Empty(t, g.created)
}

func TestHydrateFailureKeepsDefaults(t *testing.T) {
	g := &fakeGateway{getErr: &api.StatusError{Op: "get_customer", Status: 404}}
	c := NewUpdate(newConfig(g), 99)

	err := c.Hydrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNotFound)

	assert.Equal(t, int64(99), c.CustomerID())
	assert.Equal(t, "", c.Customer().FirstName)
	assert.Len(t, c.Rows(), 1)
	assert.Equal(t, Idle, c.Status())
	assert.Equal(t, []int64{99}, g.fetched)
}

func TestRandomCompleteCustomersSubmit(t *testing.T) {
	faker := gofakeit.New(7)
	for i := 0; i < 20; i++ {
		g := &fakeGateway{}
		c := NewCreate(newConfig(g))
		fill(t, c, map[string]string{
			FieldFirstName:   faker.FirstName(),
			FieldLastName:    faker.LastName(),
			FieldEmail:       faker.Email(),
			FieldAddress:     faker.Street(),
			FieldPhoneNumber: faker.Phone(),
		})
		require.NoError(t, c.ChangeSale(0, "productId", "1"))
		require.NoError(t, c.ChangeSale(0, "quantity", strconv.Itoa(faker.IntRange(1, 5))))
		require.NoError(t, c.ChangeSale(0, "unitPrice", "10"))

		_, err := c.Submit(context.Background())
		require.NoError(t, err, "errors: %v", c.Errors())
		require.Len(t, g.created, 1)
	}
}
