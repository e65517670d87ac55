package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OfferType string

const (
	OfferFreeItem OfferType = "free_item"
	OfferDiscount OfferType = "discount"
)

type FreeItemType string

const (
	FreeItemSameProduct      FreeItemType = "same_product"
	FreeItemDifferentProduct FreeItemType = "different_product"
	FreeItemExternal         FreeItemType = "external"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

type Offer struct {
	BaseModel
	OfferType        OfferType           `gorm:"type:varchar(20);not null;index" json:"offer_type"`
	ProductID        *uint               `gorm:"index" json:"product_id"`
	Product          *Product            `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
	CompanyID        *uint               `gorm:"index" json:"company_id"`
	Company          *Company            `gorm:"constraint:OnDelete:CASCADE" json:"companies,omitempty"`
	MinProductWeight decimal.NullDecimal `gorm:"type:numeric(10,3)" json:"min_product_weight"`
	MinProductMRP    decimal.NullDecimal `gorm:"column:min_product_mrp;type:numeric(12,2)" json:"min_product_mrp"`
	// no default tag: gorm would skip a false value on insert
	IsActive bool `gorm:"not null;index" json:"is_active"`

	// free_item offers
	FreeItemType                *FreeItemType `gorm:"type:varchar(20)" json:"free_item_type"`
	FreeItemProductID           *uint         `gorm:"index" json:"free_item_product_id"`
	FreeItemProduct             *Product      `gorm:"foreignKey:FreeItemProductID;constraint:OnDelete:CASCADE" json:"free_item_product,omitempty"`
	ExternalItemID              *uint         `gorm:"index" json:"external_item_id"`
	ExternalItem                *ExternalItem `gorm:"constraint:OnDelete:RESTRICT" json:"external_item,omitempty"`
	FreeItemExternalName        *string       `gorm:"type:varchar(255)" json:"free_item_external_name"`
	FreeItemExternalDescription *string       `gorm:"type:text" json:"free_item_external_description"`
	FreeItemQuantity            int           `gorm:"not null" json:"free_item_quantity"`

	// discount offers
	DiscountType  *DiscountType       `gorm:"type:varchar(20)" json:"discount_type"`
	DiscountValue decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"discount_value"`
}

func (Offer) TableName() string {
	return "offers"
}

var hundred = decimal.NewFromInt(100)

// Validate checks the per-type required fields. It does not touch the database.
func (o *Offer) Validate() error {
	if o.ProductID == nil && o.CompanyID == nil {
		return errors.New("either product_id or company_id is required")
	}
	if o.MinProductWeight.Valid && o.MinProductWeight.Decimal.IsNegative() {
		return errors.New("min_product_weight cannot be negative")
	}
	if o.MinProductMRP.Valid && o.MinProductMRP.Decimal.IsNegative() {
		return errors.New("min_product_mrp cannot be negative")
	}

	switch o.OfferType {
	case OfferFreeItem:
		return o.validateFreeItem()
	case OfferDiscount:
		return o.validateDiscount()
	default:
		return fmt.Errorf("invalid offer_type %q", o.OfferType)
	}
}

func (o *Offer) validateFreeItem() error {
	if o.ProductID == nil {
		return errors.New("product_id is required for free item offers")
	}
	if o.FreeItemType == nil {
		return errors.New("free_item_type is required for free item offers")
	}
	if o.FreeItemQuantity <= 0 {
		return errors.New("free_item_quantity must be greater than 0")
	}
	switch *o.FreeItemType {
	case FreeItemSameProduct:
	case FreeItemDifferentProduct:
		if o.FreeItemProductID == nil {
			return errors.New("free_item_product_id is required for different product offers")
		}
	case FreeItemExternal:
		if o.ExternalItemID == nil && (o.FreeItemExternalName == nil || strings.TrimSpace(*o.FreeItemExternalName) == "") {
			return errors.New("free_item_external_name or external_item_id is required for external offers")
		}
	default:
		return fmt.Errorf("invalid free_item_type %q", *o.FreeItemType)
	}
	return nil
}

func (o *Offer) validateDiscount() error {
	if o.DiscountType == nil {
		return errors.New("discount_type is required for discount offers")
	}
	if !o.DiscountValue.Valid || !o.DiscountValue.Decimal.IsPositive() {
		return errors.New("discount_value must be greater than 0")
	}
	switch *o.DiscountType {
	case DiscountFixed:
	case DiscountPercentage:
		if o.DiscountValue.Decimal.GreaterThan(hundred) {
			return errors.New("percentage discount cannot exceed 100")
		}
	default:
		return fmt.Errorf("invalid discount_type %q", *o.DiscountType)
	}
	return nil
}

// FreeStockProductID returns the product whose free stock pays for this offer.
// External offers draw on no product.
func (o *Offer) FreeStockProductID() (uint, bool) {
	if o.OfferType != OfferFreeItem || o.FreeItemType == nil {
		return 0, false
	}
	switch *o.FreeItemType {
	case FreeItemSameProduct:
		if o.ProductID != nil {
			return *o.ProductID, true
		}
	case FreeItemDifferentProduct:
		if o.FreeItemProductID != nil {
			return *o.FreeItemProductID, true
		}
	}
	return 0, false
}

// OfferSummary is the compact view used for overlap warnings.
type OfferSummary struct {
	ID               uint                `json:"id"`
	OfferType        OfferType           `json:"offer_type"`
	ProductID        *uint               `json:"product_id"`
	MinProductWeight decimal.NullDecimal `json:"min_product_weight"`
	MinProductMRP    decimal.NullDecimal `json:"min_product_mrp"`
	FreeItem         string              `json:"free_item,omitempty"`
	Discount         string              `json:"discount,omitempty"`
}

func (o *Offer) Summary() OfferSummary {
	s := OfferSummary{
		ID:               o.ID,
		OfferType:        o.OfferType,
		ProductID:        o.ProductID,
		MinProductWeight: o.MinProductWeight,
		MinProductMRP:    o.MinProductMRP,
	}
	switch o.OfferType {
	case OfferFreeItem:
		s.FreeItem = o.freeItemDescription()
	case OfferDiscount:
		s.Discount = o.discountDescription()
	}
	return s
}

func (o *Offer) freeItemDescription() string {
	if o.FreeItemType == nil {
		return ""
	}
	name := "Free item"
	switch *o.FreeItemType {
	case FreeItemSameProduct:
		name = "Same product"
	case FreeItemDifferentProduct:
		if o.FreeItemProduct != nil {
			name = o.FreeItemProduct.ProductName
		}
	case FreeItemExternal:
		if o.FreeItemExternalName != nil && *o.FreeItemExternalName != "" {
			name = *o.FreeItemExternalName
		} else if o.ExternalItem != nil {
			name = o.ExternalItem.ItemName
		}
	}
	return fmt.Sprintf("%d x %s", o.FreeItemQuantity, name)
}

func (o *Offer) discountDescription() string {
	if o.DiscountType == nil || !o.DiscountValue.Valid {
		return ""
	}
	if *o.DiscountType == DiscountPercentage {
		return o.DiscountValue.Decimal.String() + "% off"
	}
	return "₹" + o.DiscountValue.Decimal.String() + " off"
}
