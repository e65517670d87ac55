package repository

import (
	"context"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

// HistoryRepository lists append-only history rows, newest first.
type HistoryRepository interface {
	ListStock(ctx context.Context, productID *uint, page Page) ([]model.StockHistory, error)
	ListFreeStock(ctx context.Context, productID *uint, page Page) ([]model.FreeStockHistory, error)
	ListExternalItem(ctx context.Context, itemID uint, page Page) ([]model.ExternalItemHistory, error)
	ListPool(ctx context.Context, poolID uint, page Page) ([]model.OfferPoolHistory, error)
}

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db}
}

func (r *historyRepo) ListStock(ctx context.Context, productID *uint, page Page) ([]model.StockHistory, error) {
	var rows []model.StockHistory
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	} else {
		q = q.Preload("Product.Company")
	}
	err := page.apply(q).Find(&rows).Error
	return rows, err
}

func (r *historyRepo) ListFreeStock(ctx context.Context, productID *uint, page Page) ([]model.FreeStockHistory, error) {
	var rows []model.FreeStockHistory
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	} else {
		q = q.Preload("Product.Company")
	}
	err := page.apply(q).Find(&rows).Error
	return rows, err
}

func (r *historyRepo) ListExternalItem(ctx context.Context, itemID uint, page Page) ([]model.ExternalItemHistory, error) {
	var rows []model.ExternalItemHistory
	q := r.db.WithContext(ctx).Where("external_item_id = ?", itemID).Order("created_at DESC, id DESC")
	err := page.apply(q).Find(&rows).Error
	return rows, err
}

func (r *historyRepo) ListPool(ctx context.Context, poolID uint, page Page) ([]model.OfferPoolHistory, error) {
	var rows []model.OfferPoolHistory
	q := r.db.WithContext(ctx).Where("offer_pool_id = ?", poolID).Order("created_at DESC, id DESC")
	err := page.apply(q).Find(&rows).Error
	return rows, err
}
