package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name         string  `json:"name"          validate:"required,min=2,max=120"`
	Composition  *string `json:"composition"`
	Manufacturer string  `json:"manufacturer"`
	Category     string  `json:"category"`
	Batch        string  `json:"batch"         validate:"required"`
	HSNCode      string  `json:"hsn_code"`
	PackUnits    string  `json:"pack_units"`
	// ExpiryDate in YYYY-MM-DD
	ExpiryDate string          `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	MRP        decimal.Decimal `json:"mrp"         validate:"required"`
	Price      decimal.Decimal `json:"price"       validate:"required"`
	Stock      int             `json:"stock"       validate:"min=0"`
	MinStock   int             `json:"min_stock"   validate:"min=0"`
	CgstRate   decimal.Decimal `json:"cgst_rate"   validate:"min=0,max=50"`
	SgstRate   decimal.Decimal `json:"sgst_rate"   validate:"min=0,max=50"`
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"        validate:"omitempty,min=2,max=120"`
	Composition  *string          `json:"composition"`
	Manufacturer *string          `json:"manufacturer"`
	Category     *string          `json:"category"`
	Batch        *string          `json:"batch"`
	HSNCode      *string          `json:"hsn_code"`
	PackUnits    *string          `json:"pack_units"`
	ExpiryDate   *string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	MRP          *decimal.Decimal `json:"mrp"`
	Price        *decimal.Decimal `json:"price"`
	MinStock     *int             `json:"min_stock"   validate:"omitempty,min=0"`
	CgstRate     *decimal.Decimal `json:"cgst_rate"`
	SgstRate     *decimal.Decimal `json:"sgst_rate"`
}

type AdjustStockRequest struct {
	// Delta may be negative for shrinkage corrections
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	Active   string `form:"active"` // "false" | "all" | anything else = active only
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Composition  *string         `json:"composition"`
	Manufacturer string          `json:"manufacturer"`
	Category     string          `json:"category"`
	Batch        string          `json:"batch"`
	HSNCode      string          `json:"hsn_code"`
	PackUnits    string          `json:"pack_units"`
	ExpiryDate   string          `json:"expiry_date"`
	MRP          decimal.Decimal `json:"mrp"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	MinStock     int             `json:"min_stock"`
	CgstRate     decimal.Decimal `json:"cgst_rate"`
	SgstRate     decimal.Decimal `json:"sgst_rate"`
	Active       bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
