package billing

import (
	"testing"

	"drugbee/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleWith(items ...model.SaleItem) *model.Sale {
	return &model.Sale{ID: uuid.New(), Items: items}
}

func TestApplyDeduction(t *testing.T) {
	a := testProduct("A", "10.00", 10)
	b := testProduct("B", "20.00", 5)
	c := testProduct("C", "30.00", 7)

	sale := saleWith(
		model.SaleItem{ProductID: a.ID, Quantity: 4},
		model.SaleItem{ProductID: b.ID, Quantity: 5},
	)

	out := ApplyDeduction([]model.Product{*a, *b, *c}, sale)

	require.Len(t, out, 3)
	assert.Equal(t, 6, out[0].Stock)
	assert.Equal(t, 0, out[1].Stock)
	assert.Equal(t, 7, out[2].Stock, "unreferenced product passes through unchanged")
}

func TestApplyDeduction_FloorClampsAtZero(t *testing.T) {
	a := testProduct("A", "10.00", 2)
	sale := saleWith(model.SaleItem{ProductID: a.ID, Quantity: 9})

	out := ApplyDeduction([]model.Product{*a}, sale)

	assert.Equal(t, 0, out[0].Stock, "stock never goes negative")
}

func TestApplyDeduction_SumsRepeatedLines(t *testing.T) {
	a := testProduct("A", "10.00", 10)
	sale := saleWith(
		model.SaleItem{ProductID: a.ID, Quantity: 2},
		model.SaleItem{ProductID: a.ID, Quantity: 3},
	)

	out := ApplyDeduction([]model.Product{*a}, sale)

	assert.Equal(t, 5, out[0].Stock)
}

func TestApplyDeduction_DoesNotMutateInput(t *testing.T) {
	a := testProduct("A", "10.00", 10)
	in := []model.Product{*a}
	sale := saleWith(model.SaleItem{ProductID: a.ID, Quantity: 4})

	_ = ApplyDeduction(in, sale)

	assert.Equal(t, 10, in[0].Stock, "input slice stays untouched")
}
