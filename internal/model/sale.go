package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a finalized, immutable bill. Only Status and PaymentStatus ever
// change after creation (void / fulfillment transitions); every pricing field
// is frozen at finalize time so a reprint always reproduces the original bill.
// Status: "completed" | "voided"
// PaymentStatus: "paid" | "pending"
type Sale struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillNumber string    `gorm:"uniqueIndex;not null"`
	// DraftID identifies the draft this sale was finalized from. The unique
	// index is what makes finalize retries return the committed sale instead
	// of creating a duplicate.
	DraftID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CustomerName   string    `gorm:"not null"`
	CustomerPhone  string
	CustomerEmail  *string
	DoctorName     *string
	Address        *string
	DiscountPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod  string          `gorm:"type:varchar(20);not null"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;default:'paid'"`
	Status         string          `gorm:"type:varchar(20);not null;default:'completed'"`
	FollowUpDate   *time.Time
	Notes          *string
	// PDFPath is relative to PDF_STORAGE_PATH, set by the invoice worker
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one invoice row with all pricing fields copied from the product
// at add-time. Position preserves the order items were rung up in.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductName string    `gorm:"not null"`
	Batch       string
	HSNCode     string    `gorm:"column:hsn_code"`
	PackUnits   string
	ExpiryDate  time.Time
	Position    int             `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	MRP         decimal.Decimal `gorm:"type:decimal(10,2);not null;column:mrp"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CgstRate    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	SgstRate    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
