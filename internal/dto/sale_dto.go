package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ReprintRequest selects the page format for a re-rendered invoice.
type ReprintRequest struct {
	PageFormat string `json:"page_format" validate:"omitempty,oneof=A4 A5"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`                     // YYYY-MM-DD; empty = today
	Status string `form:"status,default=completed"` // completed | voided | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
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

type SaleResponse struct {
	ID             string             `json:"id"`
	BillNumber     string             `json:"bill_number"`
	CustomerName   string             `json:"customer_name"`
	CustomerPhone  string             `json:"customer_phone"`
	CustomerEmail  *string            `json:"customer_email,omitempty"`
	DoctorName     *string            `json:"doctor_name,omitempty"`
	Address        *string            `json:"address,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	DiscountPct    decimal.Decimal    `json:"discount_pct"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Total          decimal.Decimal    `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	PaymentStatus  string             `json:"payment_status"`
	Status         string             `json:"status"`
	CreatedAt      string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
