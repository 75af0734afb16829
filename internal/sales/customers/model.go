// Package customers holds the records exchanged with the customer API.
package customers

// Customer is the composite record edited by the customer form.
type Customer struct {
	CustomerID  int64          `json:"customerId,omitempty"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Email       string         `json:"email"`
	Address     string         `json:"address"`
	PhoneNumber string         `json:"phoneNumber"`
	Sales       []SaleLineItem `json:"sales"`
}

// Persisted reports whether the record already exists on the API side.
func (c Customer) Persisted() bool {
	return c.CustomerID > 0
}

// FullName joins first and last name for display.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// SaleLineItem is one sale row of a customer.
type SaleLineItem struct {
	SaleID      int64   `json:"saleId,omitempty"`
	ProductID   int64   `json:"productId"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	ProductName string  `json:"productName,omitempty"`
}

// Product is read-only catalog data used to populate sale rows.
type Product struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Pagination describes the page returned by the list endpoint.
type Pagination struct {
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage,omitempty"`
}

// ListPage is one server-side page of customers.
type ListPage struct {
	Results    []Customer `json:"results"`
	Pagination Pagination `json:"pagination"`
}
