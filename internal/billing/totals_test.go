package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(unitPrice string, qty int) LineItem {
	l := LineItem{
		UnitPrice: dec(unitPrice),
		Quantity:  qty,
	}
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return l
}

func TestComputeTotals_FullBill(t *testing.T) {
	// 3 × 100.00, 10% discount, 12% GST → 302.40
	items := []LineItem{line("100.00", 3)}

	got := ComputeTotals(items, dec("10"))

	assert.True(t, got.Subtotal.Equal(dec("300")), "subtotal: %s", got.Subtotal)
	assert.True(t, got.DiscountAmount.Equal(dec("30")), "discount: %s", got.DiscountAmount)
	assert.True(t, got.TaxableAmount.Equal(dec("270")), "taxable: %s", got.TaxableAmount)
	assert.True(t, got.TaxAmount.Equal(dec("32.4")), "tax: %s", got.TaxAmount)
	assert.True(t, got.Total.Equal(dec("302.4")), "total: %s", got.Total)
}

func TestComputeTotals_NoDiscount(t *testing.T) {
	items := []LineItem{line("50.00", 2), line("33.25", 1)}

	got := ComputeTotals(items, decimal.Zero)

	assert.True(t, got.Subtotal.Equal(dec("133.25")))
	assert.True(t, got.DiscountAmount.IsZero())
	assert.True(t, got.TaxableAmount.Equal(dec("133.25")))
	assert.True(t, got.Total.Equal(dec("149.24")), "total: %s", got.Total)
}

func TestComputeTotals_EmptyBill(t *testing.T) {
	got := ComputeTotals(nil, dec("25"))

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.DiscountAmount.IsZero())
	assert.True(t, got.TaxAmount.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestComputeTotals_SubtotalIsSumOfLines(t *testing.T) {
	items := []LineItem{
		line("12.50", 4),
		line("7.99", 3),
		line("120.00", 1),
		line("0.50", 17),
	}

	want := decimal.Zero
	for _, it := range items {
		want = want.Add(it.LineTotal)
	}

	got := ComputeTotals(items, dec("5"))
	assert.True(t, got.Subtotal.Equal(want))

	// Discount and tax never change the subtotal relationship
	got2 := ComputeTotals(items, dec("100"))
	assert.True(t, got2.Subtotal.Equal(want))
	assert.True(t, got2.TaxableAmount.IsZero())
	assert.True(t, got2.Total.IsZero())
}

func TestComputeTotalsAtRate_CustomRate(t *testing.T) {
	items := []LineItem{line("200.00", 1)}

	got := ComputeTotalsAtRate(items, decimal.Zero, dec("18"))

	assert.True(t, got.TaxAmount.Equal(dec("36")))
	assert.True(t, got.Total.Equal(dec("236")))
}

func TestComputeTotals_NoPrematureRounding(t *testing.T) {
	// 3 × 33.33 with 7% discount keeps full precision until presentation
	items := []LineItem{line("33.33", 3)}

	got := ComputeTotals(items, dec("7"))

	// 99.99 − 6.9993 = 92.9907; ×1.12 = 104.149584, left unrounded
	assert.True(t, got.TaxableAmount.Equal(dec("92.9907")), "taxable: %s", got.TaxableAmount)
	assert.True(t, got.Total.Equal(dec("104.149584")), "total: %s", got.Total)
	assert.Equal(t, "104.15", got.Total.Round(2).StringFixed(2))
}

func TestFormatBillNumber(t *testing.T) {
	assert.Equal(t, "DB001", FormatBillNumber("DB", 1))
	assert.Equal(t, "DB042", FormatBillNumber("DB", 42))
	assert.Equal(t, "DB999", FormatBillNumber("DB", 999))
	// Width grows past 999 instead of wrapping
	assert.Equal(t, "DB1000", FormatBillNumber("DB", 1000))
}
