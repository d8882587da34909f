// Package billing implements the sale construction core: the draft line-item
// accumulator, the totals calculator, and the pure inventory projection.
// Everything here is side-effect free; persistence and concurrency control
// live in the service and repository layers.
package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"drugbee/internal/model"
)

// LineItem is one row of a draft sale. Pricing fields are copied from the
// product at add-time and never re-read, so a later price change does not
// drift an open draft.
type LineItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Batch       string          `json:"batch"`
	HSNCode     string          `json:"hsn_code"`
	PackUnits   string          `json:"pack_units"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	Quantity    int             `json:"quantity"`
	MRP         decimal.Decimal `json:"mrp"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	CgstRate    decimal.Decimal `json:"cgst_rate"`
	SgstRate    decimal.Decimal `json:"sgst_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Draft is a mutable sale under construction at a register. It is owned
// exclusively by the accumulator until finalization copies its state into an
// immutable Sale; nothing mutable is shared across that boundary.
type Draft struct {
	ID            uuid.UUID       `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail *string         `json:"customer_email,omitempty"`
	DoctorName    *string         `json:"doctor_name,omitempty"`
	Address       *string         `json:"address,omitempty"`
	Items         []LineItem      `json:"items"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	FollowUpDate  *time.Time      `json:"follow_up_date,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// defaultGSTSplit is used when a product carries no GST rates of its own.
var defaultGSTSplit = decimal.NewFromInt(6)

// NewDraft starts an empty draft sale.
func NewDraft() *Draft {
	now := time.Now()
	return &Draft{
		ID:            uuid.New(),
		Items:         []LineItem{},
		DiscountPct:   decimal.Zero,
		PaymentStatus: "paid",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AddItem appends a line for the product, or merges into an existing line for
// the same product by incrementing its quantity. Stock checks here are soft:
// they read the stock the caller just looked up, and the finalize transaction
// is the hard check.
func (d *Draft) AddItem(p *model.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Active {
		return ErrProductInactive
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}

	if idx := d.findLine(p.ID); idx >= 0 {
		newQty := d.Items[idx].Quantity + qty
		if newQty > p.Stock {
			return ErrInsufficientStock
		}
		d.Items[idx].Quantity = newQty
		d.recomputeLine(idx)
		d.touch()
		return nil
	}

	if qty > p.Stock {
		return ErrInsufficientStock
	}

	cgst, sgst := p.CgstRate, p.SgstRate
	if cgst.IsZero() && sgst.IsZero() {
		cgst, sgst = defaultGSTSplit, defaultGSTSplit
	}

	line := LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Batch:       p.Batch,
		HSNCode:     p.HSNCode,
		PackUnits:   p.PackUnits,
		ExpiryDate:  p.ExpiryDate,
		Quantity:    qty,
		MRP:         p.MRP,
		UnitPrice:   p.Price,
		DiscountPct: decimal.Zero,
		CgstRate:    cgst,
		SgstRate:    sgst,
	}
	line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	d.Items = append(d.Items, line)
	d.touch()
	return nil
}

// UpdateQuantity sets the quantity of the line at index. A quantity of zero
// or less removes the line. availableStock is the referenced product's
// current stock, looked up by the caller.
func (d *Draft) UpdateQuantity(index, qty, availableStock int) error {
	if index < 0 || index >= len(d.Items) {
		return ErrLineNotFound
	}
	if qty <= 0 {
		d.RemoveItem(index)
		return nil
	}
	if qty > availableStock {
		return ErrInsufficientStock
	}
	d.Items[index].Quantity = qty
	d.recomputeLine(index)
	d.touch()
	return nil
}

// RemoveItem drops the line at index. Removing a line that does not exist is
// a no-op; removal never fails.
func (d *Draft) RemoveItem(index int) {
	if index < 0 || index >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	d.touch()
}

// SetDiscountPercent sets the bill-level discount applied by ComputeTotals.
func (d *Draft) SetDiscountPercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}
	d.DiscountPct = pct
	d.touch()
	return nil
}

// Totals recomputes the live bill summary for the draft's current state.
func (d *Draft) Totals() Totals {
	return ComputeTotals(d.Items, d.DiscountPct)
}

// Validate reports whether the draft can be finalized. It returns a
// *ValidationError enumerating every missing requirement, or nil.
func (d *Draft) Validate() error {
	var causes []string
	if d.CustomerName == "" {
		causes = append(causes, "customer name is required")
	}
	if len(d.Items) == 0 {
		causes = append(causes, "sale has no line items")
	}
	if d.PaymentMethod == "" {
		causes = append(causes, "payment method is required")
	}
	if len(causes) > 0 {
		return &ValidationError{Causes: causes}
	}
	return nil
}

func (d *Draft) findLine(productID uuid.UUID) int {
	for i := range d.Items {
		if d.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (d *Draft) recomputeLine(i int) {
	d.Items[i].LineTotal = d.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(d.Items[i].Quantity)))
}

func (d *Draft) touch() {
	d.UpdatedAt = time.Now()
}
