package service

import (
	"context"
	"fmt"
	"strings"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/metrics"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/ws"
	"fmcg-admin-api/pkg/pin"

	"gorm.io/gorm"
)

type PoolTransferRequest struct {
	Quantity   *int   `json:"quantity"`
	TransferTo string `json:"transfer_to"`
	PIN        string `json:"admin_pin"`
}

type PoolDeductRequest struct {
	Quantity *int   `json:"quantity"`
	Reason   string `json:"reason"`
	PIN      string `json:"admin_pin"`
}

type PoolAccumulateRequest struct {
	Quantity *int   `json:"quantity"`
	Reason   string `json:"reason"`
}

// PoolResult is the committed state after a pool movement.
type PoolResult struct {
	Pool           *model.OfferPool        `json:"pool"`
	History        *model.OfferPoolHistory `json:"history"`
	Ledger         *LedgerResult           `json:"ledger,omitempty"`
	InactiveOffers []model.Offer           `json:"-"`
}

type OfferPoolService interface {
	List(ctx context.Context) ([]model.OfferPool, error)
	History(ctx context.Context, poolID uint, page repository.Page) ([]model.OfferPoolHistory, error)
	Transfer(ctx context.Context, poolID uint, req PoolTransferRequest) (*PoolResult, error)
	Deduct(ctx context.Context, poolID uint, req PoolDeductRequest) (*PoolResult, error)
	Accumulate(ctx context.Context, poolID uint, req PoolAccumulateRequest) (*PoolResult, error)
}

type offerPoolService struct {
	tx        repository.TxManager
	pools     repository.OfferPoolRepository
	ledger    repository.LedgerRepository
	history   repository.HistoryRepository
	activator OfferActivator
	gate      *pin.Gate
	events    Publisher
}

func NewOfferPoolService(
	tx repository.TxManager,
	pools repository.OfferPoolRepository,
	ledger repository.LedgerRepository,
	history repository.HistoryRepository,
	activator OfferActivator,
	gate *pin.Gate,
	events Publisher,
) OfferPoolService {
	return &offerPoolService{
		tx:        tx,
		pools:     pools,
		ledger:    ledger,
		history:   history,
		activator: activator,
		gate:      gate,
		events:    events,
	}
}

func (s *offerPoolService) List(ctx context.Context) ([]model.OfferPool, error) {
	pools, err := s.pools.FindAll(ctx)
	return pools, internalErr(err)
}

func (s *offerPoolService) History(ctx context.Context, poolID uint, page repository.Page) ([]model.OfferPoolHistory, error) {
	rows, err := s.history.ListPool(ctx, poolID, page)
	return rows, internalErr(err)
}

// take removes qty units from the locked pool, rejecting more than it holds.
func take(pool *model.OfferPool, qty int) error {
	if qty > pool.AccumulatedQuantity {
		return apperror.InvalidArgument("Only %d items available in pool", pool.AccumulatedQuantity)
	}
	pool.AccumulatedQuantity -= qty
	return nil
}

func (s *offerPoolService) Transfer(ctx context.Context, poolID uint, req PoolTransferRequest) (*PoolResult, error) {
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("Quantity must be greater than 0")
	}
	dest := model.PoolDestination(req.TransferTo)
	if !dest.Valid() {
		return nil, apperror.InvalidArgument("Invalid transfer destination")
	}
	if err := checkPIN(s.gate, req.PIN); err != nil {
		return nil, err
	}
	qty := *req.Quantity

	kind, ledgerAction, poolAction := model.LedgerStock, model.ActionTransferToRegular, model.PoolTransferredToRegular
	if dest == model.DestinationFree {
		kind, ledgerAction, poolAction = model.LedgerFreeStock, model.ActionTransferToFree, model.PoolTransferredToFree
	}

	var result *PoolResult
	err := withRetry(ctx, "pool.transfer", func() error {
		return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			pool, err := s.pools.Lock(ctx, tx, poolID)
			if err != nil {
				return notFoundOr(err, "Pool not found")
			}
			if pool.ProductID == nil {
				return apperror.InvalidArgument("External item pools can only be deducted")
			}
			if err := take(pool, qty); err != nil {
				return err
			}
			if dest == model.DestinationFree {
				pool.TotalTransferredToFree += qty
			} else {
				pool.TotalTransferredToRegular += qty
			}
			if err := s.pools.Save(ctx, tx, pool); err != nil {
				return err
			}

			reason, err := model.Other(fmt.Sprintf("Transferred from offer pool (Pool ID: %d)", pool.ID))
			if err != nil {
				return err
			}
			moved, err := applyLedgerChange(ctx, tx, s.ledger, ledgerChange{
				kind:      kind,
				subjectID: *pool.ProductID,
				action:    ledgerAction,
				reason:    reason,
				pinUsed:   true,
				next:      func(st *model.LedgerState) (int, error) { return st.Quantity + qty, nil },
			})
			if err != nil {
				return notFoundOr(err, kind.Label()+" not found for pool product")
			}

			entry := &model.OfferPoolHistory{
				OfferPoolID:  pool.ID,
				ActionType:   poolAction,
				Quantity:     qty,
				Reason:       fmt.Sprintf("Admin transfer to %s stock", dest),
				AdminPinUsed: true,
			}
			if err := s.pools.AppendHistory(ctx, tx, entry); err != nil {
				return err
			}
			result = &PoolResult{Pool: pool, History: entry, Ledger: moved}
			return nil
		})
	})
	if err != nil {
		return nil, notFoundOr(err, "Pool not found")
	}

	metrics.PoolMovements.WithLabelValues(string(poolAction)).Add(float64(qty))
	if dest == model.DestinationFree {
		result.InactiveOffers = activatable(ctx, s.activator, *result.Pool.ProductID)
	}
	s.announce(result, fmt.Sprintf("Transferred %d items to %s stock", qty, dest))
	return result, nil
}

func (s *offerPoolService) Deduct(ctx context.Context, poolID uint, req PoolDeductRequest) (*PoolResult, error) {
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("Quantity must be greater than 0")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperror.InvalidArgument("Reason is required")
	}
	if err := checkPIN(s.gate, req.PIN); err != nil {
		return nil, err
	}
	qty := *req.Quantity

	result, err := s.move(ctx, "pool.deduct", poolID, func(pool *model.OfferPool) (*model.OfferPoolHistory, error) {
		if err := take(pool, qty); err != nil {
			return nil, err
		}
		pool.TotalDeducted += qty
		return &model.OfferPoolHistory{ActionType: model.PoolDeducted, Quantity: qty, Reason: reason, AdminPinUsed: true}, nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(result, fmt.Sprintf("Deducted %d items from pool", qty))
	return result, nil
}

// Accumulate records free units an offer produced that nobody claimed.
func (s *offerPoolService) Accumulate(ctx context.Context, poolID uint, req PoolAccumulateRequest) (*PoolResult, error) {
	if req.Quantity == nil || *req.Quantity <= 0 {
		return nil, apperror.InvalidArgument("Quantity must be greater than 0")
	}
	qty := *req.Quantity
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Unclaimed offer items"
	}

	result, err := s.move(ctx, "pool.accumulate", poolID, func(pool *model.OfferPool) (*model.OfferPoolHistory, error) {
		pool.AccumulatedQuantity += qty
		pool.TotalAccumulated += qty
		return &model.OfferPoolHistory{ActionType: model.PoolAccumulated, Quantity: qty, Reason: reason}, nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(result, fmt.Sprintf("Accumulated %d items in pool", qty))
	return result, nil
}

// move runs a pool-only mutation: lock, apply, conditional save, history.
func (s *offerPoolService) move(ctx context.Context, op string, poolID uint, apply func(*model.OfferPool) (*model.OfferPoolHistory, error)) (*PoolResult, error) {
	var result *PoolResult
	err := withRetry(ctx, op, func() error {
		return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
			pool, err := s.pools.Lock(ctx, tx, poolID)
			if err != nil {
				return err
			}
			entry, err := apply(pool)
			if err != nil {
				return err
			}
			if err := s.pools.Save(ctx, tx, pool); err != nil {
				return err
			}
			entry.OfferPoolID = pool.ID
			if err := s.pools.AppendHistory(ctx, tx, entry); err != nil {
				return err
			}
			result = &PoolResult{Pool: pool, History: entry}
			return nil
		})
	})
	if err != nil {
		return nil, notFoundOr(err, "Pool not found")
	}
	metrics.PoolMovements.WithLabelValues(string(result.History.ActionType)).Add(float64(result.History.Quantity))
	return result, nil
}

func (s *offerPoolService) announce(r *PoolResult, msg string) {
	publish(s.events, ws.Event{Type: "pool_update", Action: string(r.History.ActionType), Data: r, Message: msg})
}
