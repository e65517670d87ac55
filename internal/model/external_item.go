package model

import "time"

// ExternalItem is a non-catalog reward (e.g. a branded bag) with its own stock.
type ExternalItem struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ItemName          string    `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemDescription   *string   `gorm:"type:text" json:"item_description"`
	ItemImage         *string   `gorm:"type:text" json:"item_image"`
	StockQuantity     int       `gorm:"not null;default:0;check:chk_external_stock_quantity,stock_quantity >= 0" json:"stock_quantity"`
	LowStockThreshold int       `gorm:"not null;default:50" json:"low_stock_threshold"`
	Version           int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	LastUpdated       time.Time `gorm:"not null" json:"last_updated"`
}

func (ExternalItem) TableName() string {
	return "external_items"
}

func (e *ExternalItem) IsLow() bool {
	return e.StockQuantity < e.LowStockThreshold
}
