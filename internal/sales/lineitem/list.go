package lineitem

import (
	"fmt"
	"strings"

	"github.com/crudio/crudio/internal/sales/customers"
	"github.com/crudio/crudio/internal/sales/validation"
)

// List is the ordered set of sale rows of one form. Operations return a new
// List and leave the receiver untouched.
type List []Row

// FromItems builds rows for existing sales. An empty input yields one new row
// because the form always shows at least one.
func FromItems(items []customers.SaleLineItem) List {
	if len(items) == 0 {
		return List{NewRow()}
	}
	out := make(List, 0, len(items))
	for _, item := range items {
		row := NewRow()
		row.Item = item
		out = append(out, row)
	}
	return out
}

// Input is the raw text posted for one row.
type Input struct {
	Key       string
	SaleID    string
	ProductID string
	Quantity  string
	UnitPrice string
}

// Decode rebuilds rows from posted inputs, applying the same coercion as
// interactive edits. Rows without a key get a fresh one.
func Decode(inputs []Input) List {
	if len(inputs) == 0 {
		return List{NewRow()}
	}
	out := make(List, 0, len(inputs))
	for _, in := range inputs {
		row := NewRow()
		if in.Key != "" {
			row.Key = in.Key
		}
		row.Item.SaleID = parseID(strings.TrimSpace(in.SaleID))
		row = row.change(FieldProductID, in.ProductID)
		row = row.change(FieldQuantity, in.Quantity)
		row = row.change(FieldUnitPrice, in.UnitPrice)
		out = append(out, row)
	}
	return out
}

// Add appends a zeroed row with productId 0.
func (l List) Add() List {
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, NewRow())
}

// Remove deletes the row at index; later rows shift down by one.
func (l List) Remove(index int) (List, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("%w: %d", ErrRowIndex, index)
	}
	if len(l) == 1 {
		return l, ErrLastRow
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:index]...)
	return append(out, l[index+1:]...), nil
}

// Change applies a raw input to the row at index. Only that row is touched.
func (l List) Change(index int, field Field, raw string) (List, error) {
	if index < 0 || index >= len(l) {
		return l, fmt.Errorf("%w: %d", ErrRowIndex, index)
	}
	if _, err := ParseField(string(field)); err != nil {
		return l, err
	}
	out := make(List, len(l))
	copy(out, l)
	out[index] = out[index].change(field, raw)
	return out, nil
}

// IndexOf returns the position of the row with key, or -1.
func (l List) IndexOf(key string) int {
	for i, row := range l {
		if row.Key == key {
			return i
		}
	}
	return -1
}

// Items returns the sale records in row order.
func (l List) Items() []customers.SaleLineItem {
	out := make([]customers.SaleLineItem, 0, len(l))
	for _, row := range l {
		out = append(out, row.Item)
	}
	return out
}

// Rules returns the validation view of every row.
func (l List) Rules() []validation.Sale {
	out := make([]validation.Sale, 0, len(l))
	for _, row := range l {
		out = append(out, row.Rule())
	}
	return out
}
