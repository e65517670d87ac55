package model

import "fmt"

// LedgerKind selects one of the three quantity ledgers.
type LedgerKind string

const (
	LedgerStock        LedgerKind = "stock"
	LedgerFreeStock    LedgerKind = "free_stock"
	LedgerExternalItem LedgerKind = "external_item"
)

// Label is used in client facing messages ("Product stock not found").
func (k LedgerKind) Label() string {
	switch k {
	case LedgerStock:
		return "Product stock"
	case LedgerFreeStock:
		return "Free stock"
	case LedgerExternalItem:
		return "External item"
	default:
		return string(k)
	}
}

// LedgerState is the lockable part of a ledger row.
type LedgerState struct {
	SubjectID uint
	Quantity  int
	Allocated int
	Version   int64
}

// HistoryRow is any of the three typed history rows.
type HistoryRow interface {
	Entry() *LedgerEntry
}

// NewHistoryRow wraps entry in the history type of the given ledger.
func NewHistoryRow(kind LedgerKind, subjectID uint, entry LedgerEntry) (HistoryRow, error) {
	switch kind {
	case LedgerStock:
		return &StockHistory{LedgerEntry: entry, ProductID: subjectID}, nil
	case LedgerFreeStock:
		return &FreeStockHistory{LedgerEntry: entry, ProductID: subjectID}, nil
	case LedgerExternalItem:
		return &ExternalItemHistory{LedgerEntry: entry, ExternalItemID: subjectID}, nil
	default:
		return nil, fmt.Errorf("unknown ledger %q", kind)
	}
}
