package model

import "time"

type ActionType string

const (
	ActionAddition          ActionType = "addition"
	ActionUpdate            ActionType = "update"
	ActionTransferToRegular ActionType = "transfer_to_regular"
	ActionTransferToFree    ActionType = "transfer_to_free"
	ActionAllocated         ActionType = "allocated"
	ActionDeallocated       ActionType = "deallocated"
)

// LedgerEntry is the common shape of every quantity history row.
// NewQuantity always equals PreviousQuantity + ChangeAmount.
type LedgerEntry struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ActionType       ActionType `gorm:"type:varchar(32);not null" json:"action_type"`
	PreviousQuantity int        `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int        `gorm:"not null" json:"new_quantity"`
	ChangeAmount     int        `gorm:"not null" json:"change_amount"`
	ReasonType       ReasonType `gorm:"type:varchar(20);not null" json:"reason_type"`
	ReasonNote       *string    `gorm:"type:text" json:"reason_note"`
	AdminPinUsed     bool       `gorm:"not null" json:"admin_pin_used"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

// NewLedgerEntry fills the derived change amount.
func NewLedgerEntry(action ActionType, previous, next int, reason Reason, pinUsed bool) LedgerEntry {
	return LedgerEntry{
		ActionType:       action,
		PreviousQuantity: previous,
		NewQuantity:      next,
		ChangeAmount:     next - previous,
		ReasonType:       reason.Type(),
		ReasonNote:       reason.Note(),
		AdminPinUsed:     pinUsed,
	}
}

func (e *LedgerEntry) Entry() *LedgerEntry { return e }

type StockHistory struct {
	LedgerEntry
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

func (StockHistory) TableName() string {
	return "stock_history"
}

type FreeStockHistory struct {
	LedgerEntry
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

func (FreeStockHistory) TableName() string {
	return "free_stock_history"
}

type ExternalItemHistory struct {
	LedgerEntry
	ExternalItemID uint          `gorm:"not null;index" json:"external_item_id"`
	ExternalItem   *ExternalItem `gorm:"constraint:OnDelete:CASCADE" json:"external_items,omitempty"`
}

func (ExternalItemHistory) TableName() string {
	return "external_item_stock_history"
}
