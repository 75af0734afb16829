package form

import (
	"github.com/crudio/crudio/internal/sales/customers"
	"github.com/crudio/crudio/internal/sales/lineitem"
	salesshared "github.com/crudio/crudio/internal/sales/shared"
	"github.com/crudio/crudio/internal/sales/validation"
)

// View is the render model of the form page.
type View struct {
	CustomerID int64
	Customer   customers.Customer
	Rows       []lineitem.View
	Errors     validation.ErrorMap
	Submitting bool
	Failure    ErrorKind
	Total      float64
}

// View snapshots the form for rendering.
func (c *Controller) View(products []customers.Product) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	submitting := c.status == Submitting
	cust := c.customer
	cust.Sales = c.rows.Items()
	totals := make([]float64, 0, len(cust.Sales))
	for _, s := range cust.Sales {
		totals = append(totals, s.TotalPrice)
	}
	return View{
		CustomerID: c.id,
		Customer:   cust,
		Rows:       lineitem.RenderAll(c.rows, products, c.errs, submitting),
		Errors:     c.errs.Clone(),
		Submitting: submitting,
		Failure:    c.failure,
		Total:      salesshared.SalesTotal(totals...),
	}
}
