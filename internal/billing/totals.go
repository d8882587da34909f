package billing

import "github.com/shopspring/decimal"

// DefaultGSTRatePct is the combined GST rate applied to the post-discount
// amount of the whole bill. Per-line cgst/sgst are invoice display fields
// only and are never summed into the total; the flat bill-level rate is the
// source of truth.
var DefaultGSTRatePct = decimal.NewFromInt(12)

var hundred = decimal.NewFromInt(100)

// Totals is the money breakdown of a sale. Values are kept unrounded;
// rounding to 2 decimals happens only at presentation (DTOs, PDF).
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals derives the bill summary from the line items and the
// bill-level discount, using DefaultGSTRatePct. Pure: callable on every draft
// mutation to drive a live summary.
func ComputeTotals(items []LineItem, billDiscountPct decimal.Decimal) Totals {
	return ComputeTotalsAtRate(items, billDiscountPct, DefaultGSTRatePct)
}

// ComputeTotalsAtRate is ComputeTotals with an explicit combined GST rate.
func ComputeTotalsAtRate(items []LineItem, billDiscountPct, gstRatePct decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal)
	}
	discount := subtotal.Mul(billDiscountPct).Div(hundred)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(gstRatePct).Div(hundred)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}
