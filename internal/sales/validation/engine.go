// Package validation checks a customer record and its sale rows, reporting
// failures per field path.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/crudio/crudio/internal/sales/customers"
)

// Kind classifies the rule a field failed.
type Kind string

const (
	KindRequired      Kind = "Required"
	KindInvalidFormat Kind = "InvalidFormat"
	KindBelowMinimum  Kind = "BelowMinimum"
	KindAboveMaximum  Kind = "AboveMaximum"
)

// FieldError is one failing field.
type FieldError struct {
	Path    string
	Field   string
	Kind    Kind
	Message string
}

// Record is the validation view of a customer. Nil numeric fields of a sale
// are absent, which is different from a zero value.
type Record struct {
	FirstName   string `json:"firstName" validate:"filled"`
	LastName    string `json:"lastName" validate:"filled"`
	Email       string `json:"email" validate:"filled,email,dotted_domain"`
	Address     string `json:"address" validate:"filled"`
	PhoneNumber string `json:"phoneNumber" validate:"filled"`
	Sales       []Sale `json:"sales" validate:"dive"`
}

// Sale is the validation view of one sale row.
type Sale struct {
	ProductID *int64   `json:"productId" validate:"required,min=1"`
	Quantity  *float64 `json:"quantity" validate:"required,min=1,max=5"`
	UnitPrice *float64 `json:"unitPrice" validate:"required,min=1,max=10000"`
}

var messages = map[string]map[Kind]string{
	"firstName":   {KindRequired: "First name is required"},
	"lastName":    {KindRequired: "Last name is required"},
	"email":       {KindRequired: "Email is required", KindInvalidFormat: "Invalid email"},
	"address":     {KindRequired: "Address is required"},
	"phoneNumber": {KindRequired: "Phone number is required"},
	"productId": {
		KindRequired:     "Product name is required",
		KindBelowMinimum: "Product should be selected.",
	},
	"quantity": {
		KindRequired:     "Quantity is required",
		KindBelowMinimum: "Quantity must be greater than zero",
		KindAboveMaximum: "Quantity must be less than 6",
	},
	"unitPrice": {
		KindRequired:     "Unit price is required",
		KindBelowMinimum: "Unit price must be greater than zero",
		KindAboveMaximum: "Unit price must be less than 10000",
	},
}

var tagKinds = map[string]Kind{
	"filled":        KindRequired,
	"required":      KindRequired,
	"email":         KindInvalidFormat,
	"dotted_domain": KindInvalidFormat,
	"min":           KindBelowMinimum,
	"max":           KindAboveMaximum,
}

// Engine validates customer records. It is safe for concurrent use.
type Engine struct {
	validate *validator.Validate
}

// New builds an Engine with the customer rule set registered.
func New() *Engine {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	mustRegister(v, "filled", filled)
	mustRegister(v, "dotted_domain", dottedDomain)
	return &Engine{validate: v}
}

// FromCustomer builds a Record in which every sale field is present.
func FromCustomer(c customers.Customer) Record {
	rec := Record{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Address:     c.Address,
		PhoneNumber: c.PhoneNumber,
		Sales:       make([]Sale, 0, len(c.Sales)),
	}
	for _, s := range c.Sales {
		productID, quantity, unitPrice := s.ProductID, s.Quantity, s.UnitPrice
		rec.Sales = append(rec.Sales, Sale{ProductID: &productID, Quantity: &quantity, UnitPrice: &unitPrice})
	}
	return rec
}

// Validate checks every field and returns the failures keyed by path. An empty
// map means the record may be submitted.
func (e *Engine) Validate(rec Record) ErrorMap {
	out := make(ErrorMap)
	for _, fe := range e.ValidateDetailed(rec) {
		out[fe.Path] = fe.Message
	}
	return out
}

// ValidateCustomer is Validate over a fully populated customer.
func (e *Engine) ValidateCustomer(c customers.Customer) ErrorMap {
	return e.Validate(FromCustomer(c))
}

// ValidateDetailed is Validate with the rule kind of every failure.
func (e *Engine) ValidateDetailed(rec Record) []FieldError {
	err := e.validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Path: "record", Field: "record", Kind: KindInvalidFormat, Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		kind, ok := tagKinds[fe.Tag()]
		if !ok {
			kind = KindInvalidFormat
		}
		out = append(out, FieldError{
			Path:    trimRoot(fe.Namespace()),
			Field:   fe.Field(),
			Kind:    kind,
			Message: message(fe.Field(), kind),
		})
	}
	return out
}

func message(field string, kind Kind) string {
	if msg := messages[field][kind]; msg != "" {
		return msg
	}
	return field + " is invalid"
}

// trimRoot turns "Record.sales[0].quantity" into "sales[0].quantity".
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func filled(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func dottedDomain(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	at := strings.LastIndexByte(value, '@')
	if at <= 0 {
		return false
	}
	domain := value[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}
