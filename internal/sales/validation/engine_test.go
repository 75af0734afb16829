package validation

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crudio/crudio/internal/sales/customers"
)

func validCustomer() customers.Customer {
	return customers.Customer{
		FirstName:   "Phil",
		LastName:    "Boyce",
		Email:       "phil.boyce@example.com",
		Address:     "123 Main St",
		PhoneNumber: "555-1234",
		Sales: []customers.SaleLineItem{
			{ProductID: 1, Quantity: 1, UnitPrice: 1, TotalPrice: 1},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidateAcceptsValidCustomer(t *testing.T) {
	errs := New().ValidateCustomer(validCustomer())
	assert.True(t, errs.Empty(), "unexpected errors: %v", errs)
}

func TestValidateEmptyScalars(t *testing.T) {
	c := validCustomer()
	c.FirstName, c.LastName, c.Email, c.Address, c.PhoneNumber = "", "", "", "", ""
	c.Sales = []customers.SaleLineItem{{}}

	errs := New().ValidateCustomer(c)

	assert.Equal(t, "First name is required", errs.Get("firstName"))
	assert.Equal(t, "Last name is required", errs.Get("lastName"))
	assert.Equal(t, "Email is required", errs.Get("email"))
	assert.Equal(t, "Address is required", errs.Get("address"))
	assert.Equal(t, "Phone number is required", errs.Get("phoneNumber"))
	assert.Equal(t, "Product should be selected.", errs.Get("sales[0].productId"))
	assert.Equal(t, "Quantity must be greater than zero", errs.Get("sales[0].quantity"))
	assert.Equal(t, "Unit price must be greater than zero", errs.Get("sales[0].unitPrice"))
	assert.Len(t, errs, 8)
}

func TestValidateBlankCountsAsEmpty(t *testing.T) {
	c := validCustomer()
	c.FirstName = "   "
	errs := New().ValidateCustomer(c)
	assert.Equal(t, ErrorMap{"firstName": "First name is required"}, errs)
}

func TestValidateEmailFormat(t *testing.T) {
	engine := New()
	for _, email := range []string{"phil", "phil@", "@example.com", "phil@example", "phil@example."} {
		c := validCustomer()
		c.Email = email
		errs := engine.ValidateCustomer(c)
		assert.Equal(t, "Invalid email", errs.Get("email"), email)
	}
}

func TestValidateSaleBounds(t *testing.T) {
	cases := []struct {
		name string
		sale customers.SaleLineItem
		path string
		want string
	}{
		{"quantity zero", customers.SaleLineItem{ProductID: 1, Quantity: 0, UnitPrice: 1}, "sales[0].quantity", "Quantity must be greater than zero"},
		{"quantity six", customers.SaleLineItem{ProductID: 1, Quantity: 6, UnitPrice: 1}, "sales[0].quantity", "Quantity must be less than 6"},
		{"price zero", customers.SaleLineItem{ProductID: 1, Quantity: 1, UnitPrice: 0}, "sales[0].unitPrice", "Unit price must be greater than zero"},
		{"price too high", customers.SaleLineItem{ProductID: 1, Quantity: 1, UnitPrice: 10000.5}, "sales[0].unitPrice", "Unit price must be less than 10000"},
		{"no product", customers.SaleLineItem{ProductID: 0, Quantity: 1, UnitPrice: 1}, "sales[0].productId", "Product should be selected."},
	}
	engine := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCustomer()
			c.Sales = []customers.SaleLineItem{tc.sale}
			errs := engine.ValidateCustomer(c)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.want, errs.Get(tc.path))
		})
	}
}

func TestValidateBoundariesPass(t *testing.T) {
	c := validCustomer()
	c.Sales = []customers.SaleLineItem{{ProductID: 1, Quantity: 5, UnitPrice: 10000}}
	assert.True(t, New().ValidateCustomer(c).Empty())
}

func TestValidateAbsentSaleFields(t *testing.T) {
	rec := FromCustomer(validCustomer())
	rec.Sales = []Sale{{ProductID: ptr(int64(2))}}

	details := New().ValidateDetailed(rec)

	kinds := map[string]Kind{}
	msgs := map[string]string{}
	for _, fe := range details {
		kinds[fe.Path] = fe.Kind
		msgs[fe.Path] = fe.Message
	}
	assert.Equal(t, KindRequired, kinds["sales[0].quantity"])
	assert.Equal(t, "Quantity is required", msgs["sales[0].quantity"])
	assert.Equal(t, "Unit price is required", msgs["sales[0].unitPrice"])
	assert.NotContains(t, kinds, "sales[0].productId")
}

func TestValidateFirstFailingRuleWins(t *testing.T) {
	rec := FromCustomer(validCustomer())
	rec.Sales[0].Quantity = ptr(-3.0)
	details := New().ValidateDetailed(rec)
	require.Len(t, details, 1)
	assert.Equal(t, KindBelowMinimum, details[0].Kind)
	assert.Equal(t, "quantity", details[0].Field)
}

func TestValidateCollectsAcrossRows(t *testing.T) {
	c := validCustomer()
	c.Sales = append(c.Sales,
		customers.SaleLineItem{ProductID: 0, Quantity: 9, UnitPrice: 1},
		customers.SaleLineItem{ProductID: 3, Quantity: 2, UnitPrice: 20000},
	)
	errs := New().ValidateCustomer(c)
	assert.Equal(t, []string{"sales[1].productId", "sales[1].quantity", "sales[2].unitPrice"}, errs.Paths())
}

func TestValidateMissingScalarsProperty(t *testing.T) {
	faker := gofakeit.New(42)
	engine := New()
	fields := []string{"firstName", "lastName", "email", "address", "phoneNumber"}

	for i := 0; i < 50; i++ {
		c := customers.Customer{
			FirstName:   faker.FirstName(),
			LastName:    faker.LastName(),
			Email:       faker.Email(),
			Address:     faker.Street(),
			PhoneNumber: faker.Phone(),
			Sales:       []customers.SaleLineItem{{ProductID: 1, Quantity: 1, UnitPrice: 1, TotalPrice: 1}},
		}
		missing := map[string]bool{}
		for _, f := range fields {
			if faker.Bool() {
				missing[f] = true
			}
		}
		if missing["firstName"] {
			c.FirstName = ""
		}
		if missing["lastName"] {
			c.LastName = ""
		}
		if missing["email"] {
			c.Email = ""
		}
		if missing["address"] {
			c.Address = ""
		}
		if missing["phoneNumber"] {
			c.PhoneNumber = ""
		}

		errs := engine.ValidateCustomer(c)
		require.Len(t, errs, len(missing), "customer %+v", c)
		for f := range missing {
			assert.Contains(t, errs.Get(f), "is required")
		}
	}
}
