package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement is an immutable event in the inventory ledger.
// Type: "sale" | "adjustment" | "void_restore"
// Movements are NEVER modified or deleted — corrections create inverse entries.
type StockMovement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Type       string    `gorm:"type:varchar(20);not null"`
	Quantity   int       `gorm:"not null"`
	StockFrom  int       `gorm:"not null"`
	StockTo    int       `gorm:"not null"`
	Reason     string    `gorm:"not null"`
	// SaleID links to the originating Sale when Type is sale/void_restore
	SaleID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}
