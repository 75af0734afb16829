package lineitem

import (
	"strconv"

	"github.com/crudio/crudio/internal/sales/customers"
	"github.com/crudio/crudio/internal/sales/validation"
)

// Option is one entry of the product selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// View is everything a template needs to draw one row. Intents flow back as
// form actions; the view never changes state.
type View struct {
	Key       string
	Index     int
	SaleID    int64
	ProductID string
	Quantity  string
	UnitPrice string
	Total     float64
	Options   []Option
	Errors    map[string]string
	Disabled  bool
	IsLast    bool
	CanAdd    bool
	CanRemove bool
}

// Render builds the view of the row at index in a list of count rows.
func Render(row Row, index, count int, products []customers.Product, errs map[string]string, disabled bool) View {
	if errs == nil {
		errs = map[string]string{}
	}
	last := index == count-1
	return View{
		Key:       row.Key,
		Index:     index,
		SaleID:    row.Item.SaleID,
		ProductID: row.Text(FieldProductID),
		Quantity:  row.Text(FieldQuantity),
		UnitPrice: row.Text(FieldUnitPrice),
		Total:     row.Item.TotalPrice,
		Options:   productOptions(products, row.Item.ProductID),
		Errors:    errs,
		Disabled:  disabled,
		IsLast:    last,
		CanAdd:    last,
		CanRemove: !last,
	}
}

// RenderAll builds views for every row, picking each row's errors out of the
// form's error map.
func RenderAll(rows List, products []customers.Product, errs validation.ErrorMap, disabled bool) []View {
	out := make([]View, 0, len(rows))
	for i, row := range rows {
		out = append(out, Render(row, i, len(rows), products, errs.Row(i), disabled))
	}
	return out
}

func productOptions(products []customers.Product, selected int64) []Option {
	opts := make([]Option, 0, len(products)+1)
	opts = append(opts, Option{Value: "0", Label: "Select a product", Selected: selected == 0})
	for _, p := range products {
		opts = append(opts, Option{
			Value:    strconv.FormatInt(p.ProductID, 10),
			Label:    p.Name,
			Selected: p.ProductID == selected,
		})
	}
	return opts
}
