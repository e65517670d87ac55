package model

import "github.com/shopspring/decimal"

// Product is a catalog entry. Relation fields keep the JSON names the admin
// UI already reads (companies, products) from the previous backend.
type Product struct {
	BaseModel
	CompanyID     uint                `gorm:"not null;index" json:"company_id"`
	Company       *Company            `gorm:"constraint:OnDelete:CASCADE" json:"companies,omitempty"`
	ProductName   string              `gorm:"type:varchar(255);not null" json:"product_name"`
	Weight        decimal.NullDecimal `gorm:"type:numeric(10,3)" json:"weight"`
	ProductImages []string            `gorm:"serializer:json;type:jsonb" json:"product_images"`
	MRP           decimal.Decimal     `gorm:"column:mrp;type:numeric(12,2);not null" json:"mrp"`
	BuyingPrice   decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"buying_price"`
	SellingPrice  decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"selling_price"`
	GSTPercentage decimal.NullDecimal `gorm:"column:gst_percentage;type:numeric(5,2)" json:"gst_percentage"`
	HasOffer      bool                `gorm:"not null" json:"has_offer"`
	ProductDesc   *string             `gorm:"type:text" json:"product_desc"`
	ItemsPerBox   *int                `json:"items_per_box"`
}

func (Product) TableName() string {
	return "products"
}
