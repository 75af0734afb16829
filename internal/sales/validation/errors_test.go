package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMapRemoveRowRenumbers(t *testing.T) {
	errs := ErrorMap{
		"firstName":          "First name is required",
		"sales[0].quantity":  "Quantity must be greater than zero",
		"sales[1].productId": "Product should be selected.",
		"sales[2].unitPrice": "Unit price must be greater than zero",
		"sales[12].quantity": "Quantity must be less than 6",
	}

	got := errs.RemoveRow(1)

	assert.Equal(t, ErrorMap{
		"firstName":          "First name is required",
		"sales[0].quantity":  "Quantity must be greater than zero",
		"sales[1].unitPrice": "Unit price must be greater than zero",
		"sales[11].quantity": "Quantity must be less than 6",
	}, got)
	assert.Len(t, errs, 5, "receiver must not be modified")
}

func TestErrorMapRow(t *testing.T) {
	errs := ErrorMap{
		"sales[0].quantity":  "a",
		"sales[1].quantity":  "b",
		"sales[1].unitPrice": "c",
		"email":              "d",
	}
	assert.Equal(t, map[string]string{"quantity": "b", "unitPrice": "c"}, errs.Row(1))
	assert.True(t, errs.Has("sales[1].unitPrice"))
	assert.False(t, errs.Has("sales[0].unitPrice"))
	assert.False(t, ErrorMap(nil).Has("email"))
	assert.Empty(t, errs.Row(4))
}

func TestErrorMapMergeAndClone(t *testing.T) {
	var nilMap ErrorMap
	assert.NotNil(t, nilMap.Clone())
	merged := ErrorMap{"a": "1"}.Merge(ErrorMap{"a": "2", "b": "3"})
	assert.Equal(t, ErrorMap{"a": "2", "b": "3"}, merged)
	assert.Equal(t, "sales[3].productId", SalesPath(3, "productId"))
}
