// Package lineitem implements editing of the sale rows embedded in a customer
// form: coercion of raw input, derived totals and add/remove with stable keys.
package lineitem

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/crudio/crudio/internal/sales/customers"
	salesshared "github.com/crudio/crudio/internal/sales/shared"
	"github.com/crudio/crudio/internal/sales/validation"
)

// Field names a sale row input.
type Field string

const (
	FieldProductID  Field = "productId"
	FieldQuantity   Field = "quantity"
	FieldUnitPrice  Field = "unitPrice"
	FieldTotalPrice Field = "totalPrice"
)

var (
	// ErrLastRow is returned when removing the only remaining row.
	ErrLastRow = errors.New("lineitem: cannot remove the only sale row")
	// ErrRowIndex is returned for an index outside the row list.
	ErrRowIndex = errors.New("lineitem: row index out of range")
	// ErrUnknownField is returned for a field that is not a sale input.
	ErrUnknownField = errors.New("lineitem: unknown field")
)

// ParseField maps an input name to a Field.
func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldProductID, FieldQuantity, FieldUnitPrice, FieldTotalPrice:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

type fieldSet uint8

const (
	blankProduct fieldSet = 1 << iota
	blankQuantity
	blankUnitPrice
)

func blankBit(f Field) fieldSet {
	switch f {
	case FieldProductID:
		return blankProduct
	case FieldQuantity:
		return blankQuantity
	case FieldUnitPrice:
		return blankUnitPrice
	}
	return 0
}

// Row is one sale row with a synthetic key for UI identity. The key never
// leaves the process.
type Row struct {
	Key   string
	Item  customers.SaleLineItem
	blank fieldSet
}

// NewRow returns a zeroed row with a fresh key.
func NewRow() Row {
	return Row{Key: uuid.NewString()}
}

// Blank reports whether the last input for f was empty.
func (r Row) Blank(f Field) bool {
	return r.blank&blankBit(f) != 0
}

// Text renders the current value of f for an input control.
func (r Row) Text(f Field) string {
	if r.Blank(f) {
		return ""
	}
	switch f {
	case FieldProductID:
		return strconv.FormatInt(r.Item.ProductID, 10)
	case FieldQuantity:
		return formatNumber(r.Item.Quantity)
	case FieldUnitPrice:
		return formatNumber(r.Item.UnitPrice)
	case FieldTotalPrice:
		return formatNumber(r.Item.TotalPrice)
	}
	return ""
}

// Rule returns the validation view of the row; blank inputs are absent.
func (r Row) Rule() validation.Sale {
	var s validation.Sale
	if !r.Blank(FieldProductID) {
		v := r.Item.ProductID
		s.ProductID = &v
	}
	if !r.Blank(FieldQuantity) {
		v := r.Item.Quantity
		s.Quantity = &v
	}
	if !r.Blank(FieldUnitPrice) {
		v := r.Item.UnitPrice
		s.UnitPrice = &v
	}
	return s
}

// change applies a raw input to the row. totalPrice is derived only, so raw
// writes to it are ignored.
func (r Row) change(f Field, raw string) Row {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		r.blank |= blankBit(f)
	} else {
		r.blank &^= blankBit(f)
	}
	switch f {
	case FieldProductID:
		r.Item.ProductID = parseID(raw)
	case FieldQuantity:
		r.Item.Quantity = parseNumber(raw)
		r.Item.TotalPrice = salesshared.LineTotal(r.Item.Quantity, r.Item.UnitPrice)
	case FieldUnitPrice:
		r.Item.UnitPrice = parseNumber(raw)
		r.Item.TotalPrice = salesshared.LineTotal(r.Item.Quantity, r.Item.UnitPrice)
	}
	return r
}

// parseNumber coerces form text; anything unparsable becomes zero.
func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseID(raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
