package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry in the pharmacy product directory.
// MRP is the printed list price; Price is the actual sale price (Price <= MRP).
// CgstRate/SgstRate are the per-line GST display rates printed on invoices;
// the authoritative bill tax is computed at sale level (see billing.ComputeTotals).
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"index;not null"`
	Composition  *string
	Manufacturer string
	Category     string
	Batch        string `gorm:"not null"`
	HSNCode      string `gorm:"type:varchar(20);column:hsn_code"`
	// PackUnits is the pack description printed on the invoice, e.g. "10 TAB"
	PackUnits  string          `gorm:"type:varchar(30);default:''"`
	ExpiryDate time.Time       `gorm:"not null;index"`
	MRP        decimal.Decimal `gorm:"type:decimal(10,2);not null;column:mrp"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock      int             `gorm:"not null;default:0"`
	MinStock   int             `gorm:"not null;default:10"`
	CgstRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:6"`
	SgstRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:6"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
