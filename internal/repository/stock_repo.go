package repository

import (
	"context"
	"time"

	"fmcg-admin-api/internal/model"

	"gorm.io/gorm"
)

// StockRepository covers the read side of the stock and free stock ledgers.
type StockRepository interface {
	ListStock(ctx context.Context) ([]model.StockRecord, error)
	FindStock(ctx context.Context, productID uint) (*model.StockRecord, error)
	ListFreeStock(ctx context.Context) ([]model.FreeStockRecord, error)
	FindFreeStock(ctx context.Context, productID uint) (*model.FreeStockRecord, error)
	// CreateForProduct seeds empty stock and free stock rows for a new product.
	CreateForProduct(ctx context.Context, tx *gorm.DB, productID uint) error
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) ListStock(ctx context.Context) ([]model.StockRecord, error) {
	var rows []model.StockRecord
	err := r.db.WithContext(ctx).Preload("Product.Company").Order("last_updated DESC").Find(&rows).Error
	return rows, err
}

func (r *stockRepo) FindStock(ctx context.Context, productID uint) (*model.StockRecord, error) {
	var row model.StockRecord
	err := r.db.WithContext(ctx).Preload("Product.Company").First(&row, "product_id = ?", productID).Error
	return &row, err
}

func (r *stockRepo) ListFreeStock(ctx context.Context) ([]model.FreeStockRecord, error) {
	var rows []model.FreeStockRecord
	err := r.db.WithContext(ctx).Preload("Product.Company").Order("last_updated DESC").Find(&rows).Error
	return rows, err
}

func (r *stockRepo) FindFreeStock(ctx context.Context, productID uint) (*model.FreeStockRecord, error) {
	var row model.FreeStockRecord
	err := r.db.WithContext(ctx).Preload("Product.Company").First(&row, "product_id = ?", productID).Error
	return &row, err
}

func (r *stockRepo) CreateForProduct(ctx context.Context, tx *gorm.DB, productID uint) error {
	db := conn(ctx, r.db, tx)
	now := time.Now()
	stock := &model.StockRecord{ProductID: productID, LowStockThreshold: model.DefaultLowStockThreshold, LastUpdated: now}
	if err := db.Create(stock).Error; err != nil {
		return err
	}
	return db.Create(&model.FreeStockRecord{ProductID: productID, LastUpdated: now}).Error
}
