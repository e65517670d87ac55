package model

import "time"

type PoolAction string

const (
	PoolAccumulated          PoolAction = "accumulated"
	PoolTransferredToRegular PoolAction = "transferred_to_regular"
	PoolTransferredToFree    PoolAction = "transferred_to_free"
	PoolDeducted             PoolAction = "deducted"
)

// PoolDestination is where a pool transfer lands.
type PoolDestination string

const (
	DestinationRegular PoolDestination = "regular"
	DestinationFree    PoolDestination = "free"
)

func (d PoolDestination) Valid() bool {
	return d == DestinationRegular || d == DestinationFree
}

// OfferPool holds free units an offer generated but no customer claimed.
// ProductID is empty for external item offers; those pools can only be deducted.
type OfferPool struct {
	ID                        uint          `gorm:"primaryKey" json:"id"`
	OfferID                   uint          `gorm:"uniqueIndex;not null" json:"offer_id"`
	Offer                     *Offer        `gorm:"constraint:OnDelete:CASCADE" json:"offers,omitempty"`
	ProductID                 *uint         `gorm:"index" json:"product_id"`
	Product                   *Product      `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
	ExternalItemID            *uint         `gorm:"index" json:"external_item_id"`
	ExternalItem              *ExternalItem `gorm:"constraint:OnDelete:SET NULL" json:"external_items,omitempty"`
	AccumulatedQuantity       int           `gorm:"not null;default:0;check:chk_pool_accumulated,accumulated_quantity >= 0" json:"accumulated_quantity"`
	TotalAccumulated          int           `gorm:"not null;default:0" json:"total_accumulated"`
	TotalTransferredToRegular int           `gorm:"not null;default:0" json:"total_transferred_to_regular"`
	TotalTransferredToFree    int           `gorm:"not null;default:0" json:"total_transferred_to_free"`
	TotalDeducted             int           `gorm:"not null;default:0" json:"total_deducted"`
	Version                   int64         `gorm:"not null;default:0" json:"version"`
	CreatedAt                 time.Time     `json:"created_at"`
	LastUpdated               time.Time     `gorm:"not null" json:"last_updated"`
}

func (OfferPool) TableName() string {
	return "offer_pool"
}

// NewOfferPool builds the empty pool for a free item offer.
func NewOfferPool(o *Offer) *OfferPool {
	p := &OfferPool{OfferID: o.ID, ExternalItemID: o.ExternalItemID, LastUpdated: time.Now()}
	if id, ok := o.FreeStockProductID(); ok {
		p.ProductID = &id
	}
	return p
}

type OfferPoolHistory struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OfferPoolID  uint       `gorm:"not null;index" json:"offer_pool_id"`
	OfferPool    *OfferPool `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ActionType   PoolAction `gorm:"type:varchar(32);not null" json:"action_type"`
	Quantity     int        `gorm:"not null" json:"quantity"`
	Reason       string     `gorm:"type:text" json:"reason"`
	AdminPinUsed bool       `gorm:"not null" json:"admin_pin_used"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

func (OfferPoolHistory) TableName() string {
	return "offer_pool_history"
}
