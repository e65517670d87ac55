package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned by conditional writes when the row changed
// after it was read.
var ErrVersionConflict = errors.New("row was modified concurrently")

// LedgerRepository reads and writes the quantity column of the three ledgers
// through one code path. The table layout of each ledger lives in ledgerTables.
type LedgerRepository interface {
	Lock(ctx context.Context, tx *gorm.DB, kind model.LedgerKind, subjectID uint) (*model.LedgerState, error)
	Save(ctx context.Context, tx *gorm.DB, kind model.LedgerKind, state *model.LedgerState, newQuantity int) error
	AppendHistory(ctx context.Context, tx *gorm.DB, kind model.LedgerKind, subjectID uint, entry model.LedgerEntry) (*model.LedgerEntry, error)
	SetThreshold(ctx context.Context, kind model.LedgerKind, subjectID uint, threshold int) error
}

type ledgerTable struct {
	table     string
	key       string
	quantity  string
	allocated string // empty when the ledger has no allocation column
	threshold string
}

var ledgerTables = map[model.LedgerKind]ledgerTable{
	model.LedgerStock:        {table: "stock", key: "product_id", quantity: "quantity", threshold: "low_stock_threshold"},
	model.LedgerFreeStock:    {table: "free_stock", key: "product_id", quantity: "free_stock_quantity", allocated: "allocated_to_offers"},
	model.LedgerExternalItem: {table: "external_items", key: "id", quantity: "stock_quantity", threshold: "low_stock_threshold"},
}

func tableFor(kind model.LedgerKind) (ledgerTable, error) {
	t, ok := ledgerTables[kind]
	if !ok {
		return ledgerTable{}, fmt.Errorf("unknown ledger %q", kind)
	}
	return t, nil
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

// Lock reads the ledger row with SELECT ... FOR UPDATE. It returns
// gorm.ErrRecordNotFound when the subject has no row.
func (r *ledgerRepo) Lock(ctx context.Context, tx *gorm.DB, kind model.LedgerKind, subjectID uint) (*model.LedgerState, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	allocated := "0"
	if t.allocated != "" {
		allocated = t.allocated
	}

	var state model.LedgerState
	res := conn(ctx, r.db, tx).Table(t.table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select(fmt.Sprintf("%s AS subject_id, %s AS quantity, %s AS allocated, version", t.key, t.quantity, allocated)).
		Where(t.key+" = ?", subjectID).
		Limit(1).
		Scan(&state)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &state, nil
}

// Save writes newQuantity only if the row still carries state.Version, then
// bumps the version on both the row and state.
func (r *ledgerRepo) Save(ctx context.Context, tx *gorm.DB, kind model.LedgerKind, state *model.LedgerState, newQuantity int) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	res := conn(ctx, r.db, tx).Table(t.table).
		Where(t.key+" = ? AND version = ?", state.SubjectID, state.Version).
		Updates(map[string]interface{}{
			t.quantity:     newQuantity,
			"version":      gorm.Expr("version + 1"),
			"last_updated": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	state.Quantity = newQuantity
	state.Version++
	return nil
}

func (r *ledgerRepo) AppendHistory(ctx context.Context, tx *gorm.DB, kind model.LedgerKind, subjectID uint, entry model.LedgerEntry) (*model.LedgerEntry, error) {
	row, err := model.NewHistoryRow(kind, subjectID, entry)
	if err != nil {
		return nil, err
	}
	if err := conn(ctx, r.db, tx).Create(row).Error; err != nil {
		return nil, err
	}
	return row.Entry(), nil
}

func (r *ledgerRepo) SetThreshold(ctx context.Context, kind model.LedgerKind, subjectID uint, threshold int) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if t.threshold == "" {
		return fmt.Errorf("ledger %q has no threshold", kind)
	}
	res := r.db.WithContext(ctx).Table(t.table).
		Where(t.key+" = ?", subjectID).
		Update(t.threshold, threshold)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
