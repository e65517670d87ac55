package service

import (
	"context"
	"errors"
	"fmt"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/metrics"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/ws"
	"fmcg-admin-api/pkg/pin"

	"gorm.io/gorm"
)

// AdjustRequest is the body of the add and update ledger endpoints.
type AdjustRequest struct {
	Quantity   *int   `json:"quantity"`
	ReasonType string `json:"reason_type"`
	ReasonNote string `json:"reason_note"`
	PIN        string `json:"admin_pin"`
}

// LedgerResult is what a committed Add or Set reports back.
type LedgerResult struct {
	Ledger           model.LedgerKind   `json:"ledger"`
	SubjectID        uint               `json:"subject_id"`
	PreviousQuantity int                `json:"previous_quantity"`
	Quantity         int                `json:"quantity"`
	History          *model.LedgerEntry `json:"history"`
	// InactiveOffers is filled after free stock grows: free item offers on the
	// product that are switched off and could now be turned back on.
	InactiveOffers []model.Offer `json:"-"`
}

type LedgerService interface {
	Add(ctx context.Context, kind model.LedgerKind, subjectID uint, req AdjustRequest) (*LedgerResult, error)
	Set(ctx context.Context, kind model.LedgerKind, subjectID uint, req AdjustRequest) (*LedgerResult, error)
	SetThreshold(ctx context.Context, kind model.LedgerKind, subjectID uint, threshold *int) error

	ListStock(ctx context.Context) ([]model.StockRecord, error)
	GetStock(ctx context.Context, productID uint) (*model.StockRecord, error)
	ListFreeStock(ctx context.Context) ([]model.FreeStockRecord, error)
	GetFreeStock(ctx context.Context, productID uint) (*model.FreeStockRecord, error)
	StockHistory(ctx context.Context, productID *uint, page repository.Page) ([]model.StockHistory, error)
	FreeStockHistory(ctx context.Context, productID *uint, page repository.Page) ([]model.FreeStockHistory, error)
	ExternalItemHistory(ctx context.Context, itemID uint, page repository.Page) ([]model.ExternalItemHistory, error)
}

type ledgerService struct {
	tx        repository.TxManager
	ledger    repository.LedgerRepository
	stock     repository.StockRepository
	history   repository.HistoryRepository
	activator OfferActivator
	gate      *pin.Gate
	events    Publisher
}

// OfferActivator reports offers that became eligible again. OfferService implements it.
type OfferActivator interface {
	FindActivatable(ctx context.Context, productID uint) ([]model.Offer, error)
}

func NewLedgerService(
	tx repository.TxManager,
	ledger repository.LedgerRepository,
	stock repository.StockRepository,
	history repository.HistoryRepository,
	activator OfferActivator,
	gate *pin.Gate,
	events Publisher,
) LedgerService {
	return &ledgerService{
		tx:        tx,
		ledger:    ledger,
		stock:     stock,
		history:   history,
		activator: activator,
		gate:      gate,
		events:    events,
	}
}

func parseReason(kind, note string) (model.Reason, error) {
	r, err := model.ParseReason(kind, note)
	switch {
	case err == nil:
		return r, nil
	case errors.Is(err, model.ErrReasonNoteMissing):
		return r, apperror.InvalidArgument("Reason note is required for 'other' type")
	default:
		return r, apperror.InvalidArgument("Invalid reason type")
	}
}

func (s *ledgerService) Add(ctx context.Context, kind model.LedgerKind, subjectID uint, req AdjustRequest) (*LedgerResult, error) {
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("Quantity must be greater than 0")
	}
	reason, err := parseReason(req.ReasonType, req.ReasonNote)
	if err != nil {
		return nil, err
	}
	delta := *req.Quantity

	var result *LedgerResult
	err = withRetry(ctx, "ledger.add", func() error {
		return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			var err error
			result, err = applyLedgerChange(ctx, tx, s.ledger, ledgerChange{
				kind:      kind,
				subjectID: subjectID,
				action:    model.ActionAddition,
				reason:    reason,
				next:      func(st *model.LedgerState) (int, error) { return st.Quantity + delta, nil },
			})
			return err
		})
	})
	if err != nil {
		return nil, notFoundOr(err, kind.Label()+" not found")
	}

	if kind == model.LedgerFreeStock {
		result.InactiveOffers = activatable(ctx, s.activator, subjectID)
	}
	s.announce(result, "added")
	return result, nil
}

// Set overwrites the quantity. The PIN is checked before anything else so a
// caller without it always gets Forbidden.
func (s *ledgerService) Set(ctx context.Context, kind model.LedgerKind, subjectID uint, req AdjustRequest) (*LedgerResult, error) {
	if err := checkPIN(s.gate, req.PIN); err != nil {
		return nil, err
	}
	if req.Quantity == nil {
		return nil, apperror.InvalidArgument("Quantity is required")
	}
	if *req.Quantity < 0 {
		return nil, apperror.InvalidArgument("Quantity cannot be negative")
	}
	reason, err := parseReason(req.ReasonType, req.ReasonNote)
	if err != nil {
		return nil, err
	}
	target := *req.Quantity

	var result *LedgerResult
	err = withRetry(ctx, "ledger.set", func() error {
		return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			var err error
			result, err = applyLedgerChange(ctx, tx, s.ledger, ledgerChange{
				kind:      kind,
				subjectID: subjectID,
				action:    model.ActionUpdate,
				reason:    reason,
				pinUsed:   true,
				next: func(st *model.LedgerState) (int, error) {
					if target < st.Allocated {
						return 0, apperror.InvalidArgument("Free stock cannot be set below the %d units allocated to offers", st.Allocated)
					}
					return target, nil
				},
			})
			return err
		})
	})
	if err != nil {
		return nil, notFoundOr(err, kind.Label()+" not found")
	}

	s.announce(result, "updated")
	return result, nil
}

func (s *ledgerService) SetThreshold(ctx context.Context, kind model.LedgerKind, subjectID uint, threshold *int) error {
	if kind == model.LedgerFreeStock {
		return apperror.InvalidArgument("Free stock has no low stock threshold")
	}
	if threshold == nil || *threshold < 0 {
		return apperror.InvalidArgument("Low stock threshold must be 0 or greater")
	}
	if err := s.ledger.SetThreshold(ctx, kind, subjectID, *threshold); err != nil {
		return notFoundOr(err, kind.Label()+" not found")
	}
	return nil
}

func (s *ledgerService) announce(r *LedgerResult, verb string) {
	publish(s.events, ws.Event{
		Type:    "stock_update",
		Action:  fmt.Sprintf("%s_%s", r.Ledger, verb),
		Data:    r,
		Message: fmt.Sprintf("%s %d: %d -> %d", r.Ledger.Label(), r.SubjectID, r.PreviousQuantity, r.Quantity),
	})
	if len(r.InactiveOffers) > 0 {
		publish(s.events, ws.Event{
			Type:    "offer_update",
			Action:  "offers_activatable",
			Data:    r.InactiveOffers,
			Message: fmt.Sprintf("%d inactive offers can be re-activated", len(r.InactiveOffers)),
		})
	}
}

func (s *ledgerService) ListStock(ctx context.Context) ([]model.StockRecord, error) {
	rows, err := s.stock.ListStock(ctx)
	return rows, internalErr(err)
}

func (s *ledgerService) GetStock(ctx context.Context, productID uint) (*model.StockRecord, error) {
	row, err := s.stock.FindStock(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "Product stock not found")
	}
	return row, nil
}

func (s *ledgerService) ListFreeStock(ctx context.Context) ([]model.FreeStockRecord, error) {
	rows, err := s.stock.ListFreeStock(ctx)
	return rows, internalErr(err)
}

func (s *ledgerService) GetFreeStock(ctx context.Context, productID uint) (*model.FreeStockRecord, error) {
	row, err := s.stock.FindFreeStock(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "Free stock not found")
	}
	return row, nil
}

func (s *ledgerService) StockHistory(ctx context.Context, productID *uint, page repository.Page) ([]model.StockHistory, error) {
	rows, err := s.history.ListStock(ctx, productID, page)
	return rows, internalErr(err)
}

func (s *ledgerService) FreeStockHistory(ctx context.Context, productID *uint, page repository.Page) ([]model.FreeStockHistory, error) {
	rows, err := s.history.ListFreeStock(ctx, productID, page)
	return rows, internalErr(err)
}

func (s *ledgerService) ExternalItemHistory(ctx context.Context, itemID uint, page repository.Page) ([]model.ExternalItemHistory, error) {
	rows, err := s.history.ListExternalItem(ctx, itemID, page)
	return rows, internalErr(err)
}

// ledgerChange describes one quantity mutation. next computes the new
// quantity from the locked row and may reject it.
type ledgerChange struct {
	kind      model.LedgerKind
	subjectID uint
	action    model.ActionType
	reason    model.Reason
	pinUsed   bool
	next      func(st *model.LedgerState) (int, error)
}

// applyLedgerChange locks the row, writes the new quantity under a version
// check and appends the matching history row, all on tx.
func applyLedgerChange(ctx context.Context, tx *gorm.DB, repo repository.LedgerRepository, c ledgerChange) (*LedgerResult, error) {
	if c.reason.IsZero() {
		return nil, errors.New("ledger change without a reason")
	}
	state, err := repo.Lock(ctx, tx, c.kind, c.subjectID)
	if err != nil {
		return nil, err
	}
	previous := state.Quantity
	next, err := c.next(state)
	if err != nil {
		return nil, err
	}
	if next < 0 {
		return nil, apperror.InvalidArgument("Quantity cannot be negative")
	}
	if err := repo.Save(ctx, tx, c.kind, state, next); err != nil {
		return nil, err
	}
	entry, err := repo.AppendHistory(ctx, tx, c.kind, c.subjectID, model.NewLedgerEntry(c.action, previous, next, c.reason, c.pinUsed))
	if err != nil {
		return nil, fmt.Errorf("append %s history: %w", c.kind, err)
	}
	metrics.LedgerMutations.WithLabelValues(string(c.kind), string(c.action)).Inc()
	return &LedgerResult{
		Ledger:           c.kind,
		SubjectID:        c.subjectID,
		PreviousQuantity: previous,
		Quantity:         next,
		History:          entry,
	}, nil
}
