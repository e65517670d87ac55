package model

import "time"

const DefaultLowStockThreshold = 50

// StockRecord is the sellable stock ledger, one row per product.
type StockRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProductID         uint      `gorm:"uniqueIndex;not null" json:"product_id"`
	Product           *Product  `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
	Quantity          int       `gorm:"not null;default:0;check:chk_stock_quantity,quantity >= 0" json:"quantity"`
	LowStockThreshold int       `gorm:"not null;default:50" json:"low_stock_threshold"`
	Version           int64     `gorm:"not null;default:0" json:"version"`
	LastUpdated       time.Time `gorm:"not null" json:"last_updated"`
}

func (StockRecord) TableName() string {
	return "stock"
}

func (s *StockRecord) IsLow() bool {
	return s.Quantity < s.LowStockThreshold
}

// FreeStockRecord is the promotional give-away ledger, one row per product.
// AllocatedToOffers is maintained outside this service; it is only read.
type FreeStockRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProductID         uint      `gorm:"uniqueIndex;not null" json:"product_id"`
	Product           *Product  `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
	FreeStockQuantity int       `gorm:"not null;default:0;check:chk_free_stock_quantity,free_stock_quantity >= 0" json:"free_stock_quantity"`
	AllocatedToOffers int       `gorm:"not null;default:0;check:chk_free_stock_allocated,allocated_to_offers >= 0" json:"allocated_to_offers"`
	Version           int64     `gorm:"not null;default:0" json:"version"`
	LastUpdated       time.Time `gorm:"not null" json:"last_updated"`
}

func (FreeStockRecord) TableName() string {
	return "free_stock"
}

func (f *FreeStockRecord) Available() int {
	return f.FreeStockQuantity - f.AllocatedToOffers
}
