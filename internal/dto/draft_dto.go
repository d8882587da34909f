package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	// Quantity <= 0 removes the line
	Quantity int `json:"quantity"`
}

type SetDiscountRequest struct {
	DiscountPct decimal.Decimal `json:"discount_pct" validate:"min=0,max=100"`
}

// UpdateDraftCustomerRequest captures the customer block of a draft sale.
type UpdateDraftCustomerRequest struct {
	CustomerName  string  `json:"customer_name"  validate:"required,min=2"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	DoctorName    *string `json:"doctor_name"`
	Address       *string `json:"address"`
	PaymentMethod string  `json:"payment_method" validate:"omitempty,oneof=cash card upi credit"`
	PaymentStatus string  `json:"payment_status" validate:"omitempty,oneof=paid pending"`
	// FollowUpDate in YYYY-MM-DD
	FollowUpDate *string `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Batch       string          `json:"batch"`
	HSNCode     string          `json:"hsn_code"`
	PackUnits   string          `json:"pack_units"`
	ExpiryDate  string          `json:"expiry_date"`
	Quantity    int             `json:"quantity"`
	MRP         decimal.Decimal `json:"mrp"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	CgstRate    decimal.Decimal `json:"cgst_rate"`
	SgstRate    decimal.Decimal `json:"sgst_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TotalsResponse is the live bill summary, rounded for display.
type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

type DraftResponse struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	CustomerEmail *string            `json:"customer_email,omitempty"`
	DoctorName    *string            `json:"doctor_name,omitempty"`
	Address       *string            `json:"address,omitempty"`
	Items         []LineItemResponse `json:"items"`
	DiscountPct   decimal.Decimal    `json:"discount_pct"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Totals        TotalsResponse     `json:"totals"`
	CreatedAt     string             `json:"created_at"`
	UpdatedAt     string             `json:"updated_at"`
}
